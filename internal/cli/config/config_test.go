package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultEngine, cfg.Engine)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultHistory, cfg.History)
	assert.Equal(t, DefaultRows, cfg.Rows)
	assert.Equal(t, DefaultCols, cfg.Cols)
	assert.Equal(t, DefaultBins, cfg.Bins)
	assert.Equal(t, uint64(DefaultSeed), cfg.Seed)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := filepath.Join(t.TempDir(), "framebench.yaml")
	content := "engine: sqlite\nrows: 500\nbins: 3\nno_chart: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Engine)
	assert.Equal(t, 500, cfg.Rows)
	assert.Equal(t, 3, cfg.Bins)
	assert.True(t, cfg.NoChart)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultCols, cfg.Cols)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	path := filepath.Join(t.TempDir(), "framebench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: 500\n"), 0o644))

	t.Setenv("FRAMEBENCH_ROWS", "750")
	t.Setenv("FRAMEBENCH_ENGINE", "sqlite")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 750, cfg.Rows)
	assert.Equal(t, "sqlite", cfg.Engine)
}

func TestLoadConfig_FlagsOverrideEverything(t *testing.T) {
	ResetConfig()
	t.Setenv("FRAMEBENCH_ROWS", "750")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("rows", DefaultRows, "")
	flags.String("engine", DefaultEngine, "")
	require.NoError(t, flags.Set("rows", "1000"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Rows, "changed flag wins over env")
	assert.Equal(t, DefaultEngine, cfg.Engine, "unchanged flag must not override")
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad output": "output: csv\n",
		"zero rows":  "rows: 0\n",
		"zero cols":  "cols: 0\n",
		"zero bins":  "bins: -1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			ResetConfig()
			path := filepath.Join(t.TempDir(), "framebench.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := LoadConfig(path, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}
