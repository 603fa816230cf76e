package lut

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleYaml = `
verbosity: 1
outliers:
  absolute: 0.1
  relative: 0.01
smoother: gp
smoothing:
  kernel: [0.25, 0.5, 0.25]
  order: 5
  tailanchor: true
  tailpoints: 10
gp:
  lengthscale: 0.1
  samples: 1024
linearize:
  resolution: 10
  dedup: true
`

func TestConfigFromYaml(t *testing.T) {
	c, err := newConfigFromYaml([]byte(exampleYaml))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Verbosity)
	assert.Equal(t, 0.1, c.Outliers.Absolute)
	assert.Equal(t, 0.01, c.Outliers.Relative)
	assert.Equal(t, "gp", c.Smoother)
	assert.Equal(t, []float64{0.25, 0.5, 0.25}, c.Smoothing.Kernel)
	assert.Equal(t, 5, c.Smoothing.Order)
	assert.True(t, c.Smoothing.TailAnchor)
	assert.Equal(t, 10, c.Smoothing.TailPoints)
	assert.Equal(t, 0.1, c.GP.LengthScale)
	assert.Equal(t, 1024, c.GP.Samples)
	assert.Equal(t, DefaultGPOptions().Noise, c.GP.Noise) // not in the yaml, so default
	assert.Equal(t, LinearizeOptions{Resolution: 10, Dedup: true}, c.Linearize)
	assert.NoError(t, c.Validate())
}

func TestConfigAsYamlRoundTrip(t *testing.T) {
	c := NewConfig()
	c2, err := newConfigFromYaml([]byte(c.AsYaml()))
	require.NoError(t, err)
	assert.Equal(t, c, c2)
}

func TestConfigValidate(t *testing.T) {
	c := NewConfig()
	assert.NoError(t, c.Validate())

	bad := NewConfig()
	bad.Smoother = "median"
	assert.Error(t, bad.Validate())

	bad = NewConfig()
	bad.Outliers.Absolute = -1
	assert.Error(t, bad.Validate())

	bad = NewConfig()
	bad.Smoothing.Order = -1
	assert.Error(t, bad.Validate())

	bad = NewConfig()
	bad.Linearize.Resolution = 0
	assert.Error(t, bad.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(exampleYaml), 0644))

	c, err := LoadConfig(good)
	require.NoError(t, err)
	assert.Equal(t, "gp", c.Smoother)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("smoother: wibble\n"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSmoother(t *testing.T) {
	tbl := rampTable(20, func(x float64) float64 { return x })

	for _, name := range append(Smoothers, "") {
		c := NewConfig()
		c.Smoother = name
		c.GP.Samples = 20
		f, err := c.GetSmoother()
		require.NoError(t, err, name)

		out, err := f(c, tbl)
		require.NoError(t, err, name)
		assert.Equal(t, 20, out.Len(), name)
	}

	c := NewConfig()
	c.Smoother = "nope"
	_, err := c.GetSmoother()
	assert.Error(t, err)
}
