// Package config is for run settings that are unmarshalled from Viper: the
// command line flags (see internal/cli), an optional config file and
// DEMULTIPLEX_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Altius/demultiplex/internal/extract"
	"github.com/Altius/demultiplex/internal/output"
)

// Duplicate pattern policies for barcode files.
const (
	DuplicatesLast  = "last"
	DuplicatesError = "error"
)

// Config is a specification of inputs -> output files
type Config struct {
	Inputs   []string `mapstructure:"inputs"`   // A list of file strings
	Barcodes string   `mapstructure:"barcodes"` // File of "name barcode..." lines
	Path     string   `mapstructure:"path"`     // Output directory

	Mismatches int  `mapstructure:"mismatch"`
	Edit       bool `mapstructure:"edit"`
	Threads    int  `mapstructure:"threads"`

	// barcode extraction
	InRead bool   `mapstructure:"in-read"`
	Format string `mapstructure:"format"`
	Start  int    `mapstructure:"start"`
	End    int    `mapstructure:"end"`

	// match mode
	FilterMultiple bool `mapstructure:"filter-multiple"`
	Directional    bool `mapstructure:"directional"`

	// guess mode
	Output     string `mapstructure:"output"`
	SampleSize int    `mapstructure:"sample-size"`
	Threshold  int    `mapstructure:"threshold"`
	UseFreq    bool   `mapstructure:"use-freq"`

	// resources
	MaxOpen   int `mapstructure:"max-open"`
	ChunkSize int `mapstructure:"chunk-size"`
	CacheSize int `mapstructure:"cache-size"`

	Duplicates    string `mapstructure:"duplicates"`
	AllowTruncate bool   `mapstructure:"allow-truncate"`
	Expand        bool   `mapstructure:"expand"`
}

var defaults = map[string]any{
	"path":            ".",
	"mismatch":        1,
	"edit":            false,
	"threads":         0,
	"in-read":         false,
	"format":          "",
	"start":           0,
	"end":             0,
	"filter-multiple": false,
	"directional":     false,
	"output":          "-",
	"sample-size":     1000000,
	"threshold":       12,
	"use-freq":        false,
	"max-open":        0,
	"chunk-size":      1000,
	"cache-size":      128,
	"duplicates":      DuplicatesLast,
	"allow-truncate":  false,
	"expand":          false,
	"inputs":          []string{},
	"barcodes":        "",
}

var ErrInvalid = errors.New("invalid configuration")

// Load merges flags, the config file (if file is not empty) and the
// environment over the defaults. Zero Threads and MaxOpen are resolved to
// the number of CPUs and the process open-file budget.
func Load(flags *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix("DEMULTIPLEX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Threads == 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.MaxOpen == 0 {
		c.MaxOpen = output.DefaultLimit()
	}
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	var errs []error
	if c.Mismatches < 0 {
		errs = append(errs, fmt.Errorf("mismatch must not be negative, got %d", c.Mismatches))
	}
	if c.Threads < 1 {
		errs = append(errs, fmt.Errorf("threads must be positive, got %d", c.Threads))
	}
	if c.MaxOpen < 1 {
		errs = append(errs, fmt.Errorf("%w: max-open %d", output.ErrResourceExhausted, c.MaxOpen))
	}
	if c.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive, got %d", c.ChunkSize))
	}
	if c.Format != "" {
		if _, err := extract.ParseFormat(c.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Duplicates != DuplicatesLast && c.Duplicates != DuplicatesError {
		errs = append(errs, fmt.Errorf("duplicates must be %q or %q, got %q", DuplicatesLast, DuplicatesError, c.Duplicates))
	}
	if c.SampleSize < 0 || c.Threshold < 0 {
		errs = append(errs, fmt.Errorf("sample-size and threshold must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Extraction is the barcode extraction part of the settings.
func (c *Config) Extraction() extract.Options {
	return extract.Options{
		Format: c.Format,
		InRead: c.InRead,
		Start:  c.Start,
		End:    c.End,
	}
}
