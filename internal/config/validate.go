package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInclude indicates no include patterns were configured
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrEmptyCommand indicates a missing call-graph tool command
	ErrEmptyCommand = errors.New("empty call-graph command")

	// ErrInvalidDamping indicates an out-of-range damping factor
	ErrInvalidDamping = errors.New("invalid damping factor")

	// ErrInvalidTolerance indicates a non-positive convergence tolerance
	ErrInvalidTolerance = errors.New("invalid tolerance")

	// ErrInvalidIterations indicates a non-positive iteration cap
	ErrInvalidIterations = errors.New("invalid max iterations")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Paths.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern is required", ErrEmptyInclude))
	}

	if strings.TrimSpace(cfg.CallGraph.Command) == "" {
		errs = append(errs, fmt.Errorf("%w: callgraph.command is required", ErrEmptyCommand))
	}

	if cfg.Rank.DampingFactor <= 0 || cfg.Rank.DampingFactor >= 1 {
		errs = append(errs, fmt.Errorf("%w: must be in (0, 1), got %g", ErrInvalidDamping, cfg.Rank.DampingFactor))
	}
	if cfg.Rank.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be > 0, got %g", ErrInvalidTolerance, cfg.Rank.Tolerance))
	}
	if cfg.Rank.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be > 0, got %d", ErrInvalidIterations, cfg.Rank.MaxIterations))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
