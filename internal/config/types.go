// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/packforge/packforge/pkg/category"
	"github.com/packforge/packforge/pkg/merge"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/charmbracelet/log"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the complete packforge configuration.
	Config struct {
		TargetFormat int          `json:"target_format" mapstructure:"target_format" toml:"target_format"`
		Output       OutputConfig `json:"output" mapstructure:"output" toml:"output"`
		Reader       ReaderConfig `json:"reader" mapstructure:"reader" toml:"reader"`
		Merge        MergeConfig  `json:"merge" mapstructure:"merge" toml:"merge"`
		Log          LogConfig    `json:"log" mapstructure:"log" toml:"log"`
	}

	// OutputConfig controls how packs are written.
	OutputConfig struct {
		Archive bool `json:"archive" mapstructure:"archive" toml:"archive"`
		Clear   bool `json:"clear" mapstructure:"clear" toml:"clear"`
	}

	// ReaderConfig controls how packs are read.
	ReaderConfig struct {
		ErrorPolicy string `json:"error_policy" mapstructure:"error_policy" toml:"error_policy"`
		Lenient     bool   `json:"lenient" mapstructure:"lenient" toml:"lenient"`
		Workers     int    `json:"workers" mapstructure:"workers" toml:"workers"`
	}

	// MergeConfig holds the default merge strategy.
	MergeConfig struct {
		Strategy string `json:"strategy" mapstructure:"strategy" toml:"strategy"`
	}

	// LogConfig holds the log level.
	LogConfig struct {
		Level string `json:"level" mapstructure:"level" toml:"level"`
	}

	// InvalidConfigError is returned when a loaded value is out of range. It
	// wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		Field string
		Err   error
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		TargetFormat: category.UnknownFormat,
		Output:       OutputConfig{Archive: true},
		Reader:       ReaderConfig{ErrorPolicy: serialize.Abort.String()},
		Merge:        MergeConfig{Strategy: merge.FailOnError.String()},
		Log:          LogConfig{Level: log.InfoLevel.String()},
	}
}

// Validate checks the values a CUE file cannot constrain, since environment
// variables bypass the schema.
func (c *Config) Validate() error {
	if c.TargetFormat < category.UnknownFormat {
		return &InvalidConfigError{Field: "target_format", Err: fmt.Errorf("%d is below -1", c.TargetFormat)}
	}
	if c.Reader.Workers < 0 {
		return &InvalidConfigError{Field: "reader.workers", Err: fmt.Errorf("%d is negative", c.Reader.Workers)}
	}
	if _, err := serialize.ParseErrorPolicy(c.Reader.ErrorPolicy); err != nil {
		return &InvalidConfigError{Field: "reader.error_policy", Err: err}
	}
	if _, err := merge.ParseStrategy(c.Merge.Strategy); err != nil {
		return &InvalidConfigError{Field: "merge.strategy", Err: err}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return &InvalidConfigError{Field: "log.level", Err: err}
	}
	return nil
}

// ReadOptions returns reader options for the configured policy.
func (c *Config) ReadOptions(logger *log.Logger) (serialize.ReadOptions, error) {
	policy, err := serialize.ParseErrorPolicy(c.Reader.ErrorPolicy)
	if err != nil {
		return serialize.ReadOptions{}, err
	}
	return serialize.ReadOptions{
		Policy:  policy,
		Lenient: c.Reader.Lenient,
		Workers: c.Reader.Workers,
		Logger:  logger,
	}, nil
}

// MergeStrategy returns the configured default strategy.
func (c *Config) MergeStrategy() (merge.Strategy, error) {
	return merge.ParseStrategy(c.Merge.Strategy)
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Err)
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
