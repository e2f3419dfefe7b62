package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dtypediet/internal/arrowio"
	"github.com/KaramelBytes/dtypediet/internal/diet"
)

// Global configuration structure.
type Global struct {
	DefaultUnit  string `mapstructure:"default_unit" yaml:"default_unit"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	// Input
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	// Logging
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogEncoding string `mapstructure:"log_encoding" yaml:"log_encoding"`
	// Output files
	ParquetCompression string `mapstructure:"parquet_compression" yaml:"parquet_compression"`
	// Approximate comparison tolerances
	ApproxRelTol float64 `mapstructure:"approx_rtol" yaml:"approx_rtol"`
	ApproxAbsTol float64 `mapstructure:"approx_atol" yaml:"approx_atol"`
}

// Default returns the built-in settings.
func Default() *Global {
	tol := diet.DefaultTolerance()
	return &Global{
		DefaultUnit:        string(diet.MB),
		OutputFormat:       string(diet.FormatMarkdown),
		LogLevel:           "info",
		LogEncoding:        "console",
		ParquetCompression: "snappy",
		ApproxRelTol:       tol.Rel,
		ApproxAbsTol:       tol.Abs,
	}
}

// Dir returns ~/.dtypediet.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dtypediet"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dtypediet/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DTYPEDIET")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("default_unit", d.DefaultUnit)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_encoding", d.LogEncoding)
	v.SetDefault("parquet_compression", d.ParquetCompression)
	v.SetDefault("approx_rtol", d.ApproxRelTol)
	v.SetDefault("approx_atol", d.ApproxAbsTol)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// the default file is optional
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks that enumerated settings name known values.
func (c *Global) Validate() error {
	if _, err := diet.ParseUnit(c.DefaultUnit); err != nil {
		return fmt.Errorf("default_unit: %w", err)
	}
	if _, err := diet.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("output_format: %w", err)
	}
	if _, err := arrowio.ParseCompression(c.ParquetCompression); err != nil {
		return fmt.Errorf("parquet_compression: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogEncoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_encoding: %q (use console or json)", c.LogEncoding)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must be >= 0, got %d", c.MaxRows)
	}
	if c.ApproxRelTol < 0 || c.ApproxAbsTol < 0 {
		return fmt.Errorf("approx tolerances must be >= 0")
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter, or 0 to sniff.
// "\t" and "tab" both mean a tab.
func (c *Global) DelimiterRune() (rune, error) {
	return ParseDelimiter(c.Delimiter)
}

// ParseDelimiter resolves a single-character delimiter; empty means sniff.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
