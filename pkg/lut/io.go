package lut

// Tables are stored as text: a single header line of column names, then
// rows of floats separated by whitespace or commas. '#' comment lines
// may appear anywhere; we write Meta as comments straight after the
// header, so readers that skip exactly one header line still work. We write CRLF line endings, as the
// existing calibration files do, and read either.

import(
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/abworrall/lumcal/pkg/emath"
)

var(
	TableHeader = []string{"Intensity", "Luminance"}
	LUTHeader   = []string{"IntensityIn", "IntensityOut", "Luminance"}
	CLUTHeader  = []string{"IntensityIn", "R_out", "G_out", "B_out",
		"M00", "M01", "M02", "M10", "M11", "M12", "M20", "M21", "M22"}
)

const(
	lineEnd    = "\r\n"
	clutColumns = 13
)

// columns is a parsed table file
type columns struct {
	header []string
	meta   Meta
	rows   [][]float64
	width  int
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
}

func readColumns(r io.Reader) (columns, error) {
	c := columns{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text()) // also eats the \r of CRLF

		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "#"):
			c.meta.parseComment(strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue

		case c.header == nil:
			c.header = splitFields(line)
			continue
		}

		fields := splitFields(line)
		if c.width == 0 {
			c.width = len(fields)
		} else if len(fields) != c.width {
			return c, fmt.Errorf("line %d: %d columns, expected %d", lineNo, len(fields), c.width)
		}

		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return c, fmt.Errorf("line %d column %d: %w", lineNo, i+1, err)
			}
			row[i] = v
		}
		c.rows = append(c.rows, row)
	}

	if err := scanner.Err(); err != nil {
		return c, err
	}
	if c.header == nil {
		return c, fmt.Errorf("no header line")
	}
	return c, nil
}

func (c columns)column(i int) []float64 {
	col := make([]float64, len(c.rows))
	for j, row := range c.rows {
		col[j] = row[i]
	}
	return col
}

func (m *Meta)parseComment(s string) {
	k, v, found := strings.Cut(s, ":")
	if !found {
		return
	}
	v = strings.TrimSpace(v)

	switch strings.TrimSpace(k) {
	case "rows":         m.Rows, _ = strconv.Atoi(v)
	case "resolution":   m.Resolution, _ = strconv.Atoi(v)
	case "deduplicated": m.Deduplicated, _ = strconv.ParseBool(v)
	case "note":         m.Notes = append(m.Notes, v)
	}
}

func (m Meta)writeComments(w *bufio.Writer, rows int) {
	fmt.Fprintf(w, "# rows: %d%s", rows, lineEnd)
	if m.Resolution > 0 {
		fmt.Fprintf(w, "# resolution: %d%s", m.Resolution, lineEnd)
	}
	if m.Deduplicated {
		fmt.Fprintf(w, "# deduplicated: true%s", lineEnd)
	}
	for _, note := range m.Notes {
		fmt.Fprintf(w, "# note: %s%s", note, lineEnd)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'e', 18, 64)
}

func writeRows(w *bufio.Writer, header []string, meta *Meta, nRows int, row func(i int) []float64) error {
	w.WriteString(strings.Join(header, " ") + lineEnd)
	if meta != nil {
		meta.writeComments(w, nRows)
	}
	for i:=0; i<nRows; i++ {
		vals := row(i)
		strs := make([]string, len(vals))
		for j, v := range vals {
			strs[j] = formatFloat(v)
		}
		w.WriteString(strings.Join(strs, " ") + lineEnd)
	}
	return w.Flush()
}

func WriteTable(w io.Writer, t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	return writeRows(bw, TableHeader, nil, t.Len(), func(i int) []float64 {
		return []float64{t.Intensity[i], t.Luminance[i]}
	})
}

// ReadTable reads a two column (intensity, luminance) table. Extra
// columns are ignored.
func ReadTable(r io.Reader) (Table, error) {
	c, err := readColumns(r)
	if err != nil {
		return Table{}, err
	}
	if len(c.rows) > 0 && c.width < 2 {
		return Table{}, fmt.Errorf("table needs 2 columns, has %d", c.width)
	}
	t := Table{Intensity: c.column(0), Luminance: c.column(1)}
	if len(c.rows) == 0 {
		t = Table{Intensity: []float64{}, Luminance: []float64{}}
	}
	return t, t.Validate()
}

func WriteLUT(w io.Writer, l *LUT) error {
	n := l.Len()
	if len(l.IntensityOut) != n || len(l.Luminance) != n {
		return fmt.Errorf("LUT columns have different lengths (%d, %d, %d)", n, len(l.IntensityOut), len(l.Luminance))
	}
	bw := bufio.NewWriter(w)
	return writeRows(bw, LUTHeader, &l.Meta, n, func(i int) []float64 {
		return []float64{l.IntensityIn[i], l.IntensityOut[i], l.Luminance[i]}
	})
}

// ReadLUT reads a greyscale LUT. The luminance column is optional.
func ReadLUT(r io.Reader) (*LUT, error) {
	c, err := readColumns(r)
	if err != nil {
		return nil, err
	}
	return c.toLUT()
}

func (c columns)toLUT() (*LUT, error) {
	if c.width < 2 {
		return nil, fmt.Errorf("LUT needs at least 2 columns, has %d", c.width)
	}
	l := &LUT{
		IntensityIn:  c.column(0),
		IntensityOut: c.column(1),
		Meta:         c.meta,
	}
	if c.width >= 3 {
		l.Luminance = c.column(2)
	}
	if l.Rows != 0 && l.Rows != l.Len() {
		l.addNote("header said %d rows, file has %d", l.Rows, l.Len())
	}
	l.Rows = l.Len()
	return l, nil
}

func WriteCLUT(w io.Writer, c *CLUT) error {
	n := c.Len()
	for ch := 0; ch < 3; ch++ {
		if len(c.Out[ch]) != n {
			return fmt.Errorf("CLUT channel %d has %d rows, expected %d", ch, len(c.Out[ch]), n)
		}
	}
	if len(c.Matrix) != n {
		return fmt.Errorf("CLUT has %d matrices for %d rows", len(c.Matrix), n)
	}

	bw := bufio.NewWriter(w)
	return writeRows(bw, CLUTHeader, &c.Meta, n, func(i int) []float64 {
		row := []float64{c.IntensityIn[i], c.Out[0][i], c.Out[1][i], c.Out[2][i]}
		return append(row, c.Matrix[i][:]...)
	})
}

// ReadCLUT reads a color LUT. The matrix block is optional, but if
// present must be complete.
func ReadCLUT(r io.Reader) (*CLUT, error) {
	c, err := readColumns(r)
	if err != nil {
		return nil, err
	}
	return c.toCLUT()
}

func (c columns)toCLUT() (*CLUT, error) {
	switch {
	case c.width < 4:
		return nil, fmt.Errorf("CLUT needs at least 4 columns, has %d", c.width)
	case c.width > 4 && c.width < clutColumns:
		return nil, fmt.Errorf("CLUT has a partial color matrix block (%d columns)", c.width)
	}

	clut := &CLUT{
		IntensityIn: c.column(0),
		Out:         [3][]float64{c.column(1), c.column(2), c.column(3)},
		Meta:        c.meta,
	}
	if c.width >= clutColumns {
		clut.Matrix = make([]emath.Mat3, len(c.rows))
		for i, row := range c.rows {
			copy(clut.Matrix[i][:], row[4:clutColumns])
		}
	}
	clut.Rows = clut.Len()
	return clut, nil
}

// ReadGammaTable reads either kind of table, deciding by column count:
// four or more is a CLUT.
func ReadGammaTable(r io.Reader) (GammaTable, error) {
	c, err := readColumns(r)
	if err != nil {
		return nil, err
	}
	if c.width >= 4 {
		return c.toCLUT()
	}
	return c.toLUT()
}

// ReadSamples reads a measurement file: each row is an intensity
// followed by one or more luminance readings (NaN for failed reads).
func ReadSamples(r io.Reader) ([]Sample, error) {
	c, err := readColumns(r)
	if err != nil {
		return nil, err
	}
	if len(c.rows) > 0 && c.width < 2 {
		return nil, fmt.Errorf("measurements need at least 2 columns, have %d", c.width)
	}

	samples := []Sample{}
	for _, row := range c.rows {
		for _, lum := range row[1:] {
			samples = append(samples, Sample{Intensity: row[0], Luminance: lum})
		}
	}
	return samples, nil
}

// SampleHeader is the header for a measurement file with `repeats`
// readings per row.
func SampleHeader(repeats int) []string {
	h := []string{"Intensity"}
	for i:=0; i<repeats; i++ {
		h = append(h, fmt.Sprintf("Luminance%d", i))
	}
	return h
}

// WriteSampleRow writes one measurement row (no header)
func WriteSampleRow(w io.Writer, intensity float64, lums []float64) error {
	strs := []string{formatFloat(intensity)}
	for _, v := range lums {
		strs = append(strs, formatFloat(v))
	}
	_, err := io.WriteString(w, strings.Join(strs, " ") + lineEnd)
	return err
}

func WriteSampleHeader(w io.Writer, repeats int) error {
	_, err := io.WriteString(w, strings.Join(SampleHeader(repeats), " ") + lineEnd)
	return err
}

// Convenience wrappers that go via the filesystem

func readFile[T any](filename string, f func(io.Reader) (T, error)) (T, error) {
	var zero T
	reader, err := os.Open(filename)
	if err != nil {
		return zero, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	v, err := f(reader)
	if err != nil {
		return zero, fmt.Errorf("parse '%s': %w", filename, err)
	}
	return v, nil
}

func writeFile(filename string, f func(io.Writer) error) error {
	writer, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	}
	if err := f(writer); err != nil {
		writer.Close()
		return fmt.Errorf("write '%s': %w", filename, err)
	}
	return writer.Close()
}

func ReadTableFile(filename string) (Table, error)           { return readFile(filename, ReadTable) }
func ReadLUTFile(filename string) (*LUT, error)             { return readFile(filename, ReadLUT) }
func ReadCLUTFile(filename string) (*CLUT, error)           { return readFile(filename, ReadCLUT) }
func ReadGammaTableFile(filename string) (GammaTable, error) { return readFile(filename, ReadGammaTable) }
func ReadSamplesFile(filename string) ([]Sample, error)     { return readFile(filename, ReadSamples) }

func (t Table)WriteFile(filename string) error {
	return writeFile(filename, func(w io.Writer) error { return WriteTable(w, t) })
}
func (l *LUT)WriteFile(filename string) error {
	return writeFile(filename, func(w io.Writer) error { return WriteLUT(w, l) })
}
func (c *CLUT)WriteFile(filename string) error {
	return writeFile(filename, func(w io.Writer) error { return WriteCLUT(w, c) })
}
