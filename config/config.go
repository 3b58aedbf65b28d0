// SPDX-License-Identifier: MIT

// Package config loads the YAML run configuration and the YAML input file of
// a validation run, and converts both into pipeline values.
//
// A configuration file looks like:
//
//	prescription: {points: 7, variant: ""}
//	processes_file: ""          # empty selects the embedded default table
//	eigen: {solver: jacobi, tolerance: 1e-12, max_iterations: 0}
//	theory_threshold: 0
//	log_level: info
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/thcov/eigenbasis"
	"github.com/katalvlaran/thcov/pipeline"
	"github.com/katalvlaran/thcov/prescription"
	"github.com/katalvlaran/thcov/process"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Eigen selects the eigensolver of the projected covariance.
type Eigen struct {
	Solver        string  `yaml:"solver"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"` // 0 = automatic
}

// Config is the run configuration.
type Config struct {
	Prescription  prescription.Spec `yaml:"prescription"`
	ProcessesFile string            `yaml:"processes_file"`
	Eigen         Eigen             `yaml:"eigen"`
	// TheoryThreshold zeroes normalized covariance entries whose correlation
	// is below it before projection; 0 disables the filter.
	TheoryThreshold float64 `yaml:"theory_threshold"`
	LogLevel        string  `yaml:"log_level"`
}

// Default returns the 7-point configuration with the Jacobi solver.
func Default() Config {
	return Config{
		Prescription: prescription.Spec{Points: 7},
		Eigen: Eigen{
			Solver:    string(eigenbasis.DefaultSolver),
			Tolerance: eigenbasis.DefaultTolerance,
		},
		LogLevel: zerolog.LevelInfoValue,
	}
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Prescription.Validate(); err != nil {
		return fmt.Errorf("config: prescription: %w", err)
	}
	if _, err := eigenbasis.ParseSolver(c.Eigen.Solver); err != nil {
		return fmt.Errorf("config: eigen.solver: %v: %w", err, ErrInvalidConfig)
	}
	if t := c.Eigen.Tolerance; math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("config: eigen.tolerance %g: %w", t, ErrInvalidConfig)
	}
	if c.Eigen.MaxIterations < 0 {
		return fmt.Errorf("config: eigen.max_iterations %d: %w", c.Eigen.MaxIterations, ErrInvalidConfig)
	}
	if t := c.TheoryThreshold; math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("config: theory_threshold %g: %w", t, ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel; an empty level is info.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}

	return lvl, nil
}

// ProcessTable loads ProcessesFile, or returns the embedded default table.
func (c Config) ProcessTable() (process.Table, error) {
	if c.ProcessesFile == "" {
		return process.DefaultTable(), nil
	}

	return process.LoadTable(c.ProcessesFile)
}

// Pipeline converts c into a pipeline.Config logging to logger.
func (c Config) Pipeline(logger *zerolog.Logger) (pipeline.Config, error) {
	table, err := c.ProcessTable()
	if err != nil {
		return pipeline.Config{}, err
	}

	return pipeline.Config{
		Prescription:  c.Prescription,
		Table:         table,
		Solver:        eigenbasis.Solver(c.Eigen.Solver),
		Tolerance:     c.Eigen.Tolerance,
		MaxIterations: c.Eigen.MaxIterations,
		Threshold:     c.TheoryThreshold,
		Logger:        logger,
	}, nil
}
