package lut

import(
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadSampleFilesAndDirs reads measurement files; directories are
// recursed into, and files that don't look like measurements (by
// extension) are skipped. A calibration run is often spread over
// several sessions, so each file becomes its own sample set.
func LoadSampleFilesAndDirs(args ...string) ([][]Sample, error) {
	sets := [][]Sample{}

	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return nil, fmt.Errorf("load %s: %w", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("readdir %s: %w", arg, err)
			}
			names := []string{}
			for _, content := range contents {
				names = append(names, filepath.Join(arg, content.Name()))
			}
			sort.Strings(names)

			more, err := LoadSampleFilesAndDirs(names...)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", arg, err)
			}
			sets = append(sets, more...)

		default: // is a file, load it
			switch strings.ToLower(filepath.Ext(arg)) {
			case ".csv", ".txt":
				samples, err := ReadSamplesFile(arg)
				if err != nil {
					return nil, err
				}
				log.Printf("Loaded %d samples from %s\n", len(samples), arg)
				sets = append(sets, samples)
			}
		}
	}

	return sets, nil
}
