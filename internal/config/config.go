// Package config loads pyatlas configuration from .pyatlas/config.yml with
// environment variable overrides.
package config

// Config represents the complete pyatlas configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	CallGraph CallGraphConfig `yaml:"callgraph" mapstructure:"callgraph"`
	Rank      RankConfig      `yaml:"rank" mapstructure:"rank"`
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// CallGraphConfig configures the external call-graph tool.
type CallGraphConfig struct {
	Command string   `yaml:"command" mapstructure:"command"` // executable name or path
	Args    []string `yaml:"args" mapstructure:"args"`       // extra arguments before the file list
}

// RankConfig configures the importance ranker.
type RankConfig struct {
	DampingFactor float64 `yaml:"damping_factor" mapstructure:"damping_factor"`
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.py",
			},
			Ignore: []string{
				"**/test_*.py",
				"**/*_test.py",
				"**/tests/**",
				"**/venv/**",
				"**/.venv/**",
				"**/site-packages/**",
				"**/__pycache__/**",
				"**/build/**",
				"**/dist/**",
				".git/**",
			},
		},
		CallGraph: CallGraphConfig{
			Command: "pycg",
		},
		Rank: RankConfig{
			DampingFactor: 0.85,
			Tolerance:     1e-6,
			MaxIterations: 100,
		},
	}
}
