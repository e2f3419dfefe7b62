package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dtypediet/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dtypediet configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "default_unit: %s\n", c.DefaultUnit)
		fmt.Fprintf(w, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(w, "max_rows: %d\n", c.MaxRows)
		if c.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", c.Delimiter)
		}
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "log_encoding: %s\n", c.LogEncoding)
		fmt.Fprintf(w, "parquet_compression: %s\n", c.ParquetCompression)
		fmt.Fprintf(w, "approx_rtol: %g\n", c.ApproxRelTol)
		fmt.Fprintf(w, "approx_atol: %g\n", c.ApproxAbsTol)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := *currentConfig()
		switch key {
		case "default_unit":
			c.DefaultUnit = val
		case "output_format":
			c.OutputFormat = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_rows: %w", err)
			}
			c.MaxRows = i
		case "delimiter":
			c.Delimiter = val
		case "log_level":
			c.LogLevel = val
		case "log_encoding":
			c.LogEncoding = val
		case "parquet_compression":
			c.ParquetCompression = val
		case "approx_rtol", "approx_atol":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			if key == "approx_rtol" {
				c.ApproxRelTol = f
			} else {
				c.ApproxAbsTol = f
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&c, cfgFile); err != nil {
			return err
		}
		cfg = &c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
