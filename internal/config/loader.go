package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PYATLAS_*)
// 2. Config file (.pyatlas/config.yml or .pyatlas/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".pyatlas")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("PYATLAS")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PYATLAS_CALLGRAPH_COMMAND)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("callgraph.command")
	v.BindEnv("rank.damping_factor")
	v.BindEnv("rank.tolerance")
	v.BindEnv("rank.max_iterations")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("callgraph.command", defaults.CallGraph.Command)
	v.SetDefault("callgraph.args", defaults.CallGraph.Args)

	v.SetDefault("rank.damping_factor", defaults.Rank.DampingFactor)
	v.SetDefault("rank.tolerance", defaults.Rank.Tolerance)
	v.SetDefault("rank.max_iterations", defaults.Rank.MaxIterations)
}

// LoadConfig is a convenience function that creates a loader and loads
// config using the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
