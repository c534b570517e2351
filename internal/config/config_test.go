package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for configuration:
// - Defaults apply when no config file exists
// - A config file in .pyatlas/ overrides defaults
// - PYATLAS_* environment variables override the file
// - Validation rejects empty includes, empty command and bad rank knobs

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Ignore, "**/tests/**")
	assert.Equal(t, "pycg", cfg.CallGraph.Command)
	assert.Equal(t, 0.85, cfg.Rank.DampingFactor)
	assert.Equal(t, 1e-6, cfg.Rank.Tolerance)
	assert.Equal(t, 100, cfg.Rank.MaxIterations)
}

func TestLoad_ConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".pyatlas"), 0o755))
	yml := `callgraph:
  command: mytool
  args: ["--fast"]
rank:
  damping_factor: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pyatlas", "config.yaml"), []byte(yml), 0o644))

	cfg, err := LoadConfigFromDir(root)
	require.NoError(t, err)

	assert.Equal(t, "mytool", cfg.CallGraph.Command)
	assert.Equal(t, []string{"--fast"}, cfg.CallGraph.Args)
	assert.Equal(t, 0.5, cfg.Rank.DampingFactor)
	// Untouched sections keep their defaults.
	assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Include)
	assert.Equal(t, 100, cfg.Rank.MaxIterations)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".pyatlas"), 0o755))
	yml := "callgraph:\n  command: from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pyatlas", "config.yaml"), []byte(yml), 0o644))

	t.Setenv("PYATLAS_CALLGRAPH_COMMAND", "from-env")
	t.Setenv("PYATLAS_RANK_MAX_ITERATIONS", "42")

	cfg, err := LoadConfigFromDir(root)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.CallGraph.Command)
	assert.Equal(t, 42, cfg.Rank.MaxIterations)
}

func TestLoad_InvalidFileRejected(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".pyatlas"), 0o755))
	yml := "rank:\n  damping_factor: 2.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pyatlas", "config.yaml"), []byte(yml), 0o644))

	_, err := LoadConfigFromDir(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDamping)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate(Default()))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty include", func(c *Config) { c.Paths.Include = nil }, ErrEmptyInclude},
		{"blank command", func(c *Config) { c.CallGraph.Command = "  " }, ErrEmptyCommand},
		{"damping too high", func(c *Config) { c.Rank.DampingFactor = 1.0 }, ErrInvalidDamping},
		{"damping zero", func(c *Config) { c.Rank.DampingFactor = 0 }, ErrInvalidDamping},
		{"zero tolerance", func(c *Config) { c.Rank.Tolerance = 0 }, ErrInvalidTolerance},
		{"negative iterations", func(c *Config) { c.Rank.MaxIterations = -5 }, ErrInvalidIterations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}
