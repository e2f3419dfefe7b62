package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dtypediet/internal/config"
	"github.com/KaramelBytes/dtypediet/internal/logger"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration; never nil after loadConfig
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "dtypediet",
	Short: "dtypediet: find the narrowest lossless dtype for every column",
	Long: `dtypediet loads a table (CSV, TSV, XLSX, Parquet or Arrow), tries narrower integer,
float and categorical representations for each column, and reports the memory a
value-preserving conversion would save. The optimize command writes the narrowed table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dtypediet/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output (per-candidate evaluation logs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		level = logLevel
	}
	if err := logger.Init(logger.Config{Level: level, Encoding: cfg.LogEncoding, Development: debug}); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
}

// currentConfig returns the loaded configuration or the defaults.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
