package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when configuration is rejected before any column is processed
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults taken from the reference heuristic
const (
	DefaultThreshold            = 0.9
	DefaultSampleSize           = 1000
	DefaultParallelRowThreshold = 20000
)

// Config holds all coltype configuration
type Config struct {
	Inference InferenceConfig `yaml:"inference" mapstructure:"inference"`
	Loader    LoaderConfig    `yaml:"loader" mapstructure:"loader"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// InferenceConfig controls the column type heuristic
type InferenceConfig struct {
	Threshold            float64 `yaml:"threshold" mapstructure:"threshold"`                           // Minimum agreeing share, in (0,1]
	SampleSize           int     `yaml:"sample_size" mapstructure:"sample_size"`                       // Cap on values inspected per column
	ParallelRowThreshold int     `yaml:"parallel_row_threshold" mapstructure:"parallel_row_threshold"` // Rows above which columns fan out to workers
	Workers              int     `yaml:"workers" mapstructure:"workers"`                               // 0 = available parallelism
	Seed                 uint64  `yaml:"seed" mapstructure:"seed"`                                     // 0 = fresh random samples per run
}

// LoaderConfig controls how datasets are read
type LoaderConfig struct {
	Format    string `yaml:"format" mapstructure:"format"`       // csv, parquet, arrow; empty = by extension
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"` // CSV field separator
}

// CacheConfig controls the in-memory result cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // json, yaml, table
	Explain bool   `yaml:"explain" mapstructure:"explain"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		Inference: DefaultInferenceConfig(),
		Loader: LoaderConfig{
			Delimiter: ",",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultInferenceConfig returns the default heuristic parameters
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{
		Threshold:            DefaultThreshold,
		SampleSize:           DefaultSampleSize,
		ParallelRowThreshold: DefaultParallelRowThreshold,
	}
}

// Validate rejects parameters the heuristic cannot run with
func (c InferenceConfig) Validate() error {
	if !(c.Threshold > 0 && c.Threshold <= 1) {
		return fmt.Errorf("%w: threshold %v outside (0,1]", ErrInvalidConfig, c.Threshold)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidConfig, c.SampleSize)
	}
	if c.ParallelRowThreshold < 0 {
		return fmt.Errorf("%w: parallel row threshold must not be negative, got %d", ErrInvalidConfig, c.ParallelRowThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	if err := c.Inference.Validate(); err != nil {
		return err
	}
	switch c.Loader.Format {
	case "", "csv", "parquet", "arrow":
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Loader.Format)
	}
	if len([]rune(c.Loader.Delimiter)) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidConfig, c.Loader.Delimiter)
	}
	switch c.Output.Format {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output.Format)
	}
	return nil
}
