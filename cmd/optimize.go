package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dtypediet/internal/arrowio"
	"github.com/KaramelBytes/dtypediet/internal/diet"
)

var (
	optInput       inputFlags
	optDiet        dietFlags
	optOut         string
	optCompression string
	optQuiet       bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <file> --out <file.parquet|file.arrow>",
	Short: "Apply every proposed dtype and write the narrowed table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := arrowio.FormatFromPath(optOut); err != nil {
			return fmt.Errorf("--out: %w", err)
		}
		compression := currentConfig().ParquetCompression
		if cmd.Flags().Changed("compression") {
			compression = optCompression
		}
		if _, err := arrowio.ParseCompression(compression); err != nil {
			return err
		}

		rep, ds, format, err := buildFileReport(cmd, args[0], &optInput, &optDiet)
		if err != nil {
			return err
		}
		narrow, err := diet.Optimize(ds, rep)
		if err != nil {
			return err
		}
		if err := arrowio.WriteFile(optOut, narrow, arrowio.ParquetOptions{Compression: compression}); err != nil {
			return err
		}
		t := rep.Totals()
		u := rep.Unit
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s: %d of %d columns narrowed, %s → %s %s (saved %.1f%%)\n",
			optOut, len(rep.Proposals()), len(rep.Columns),
			diet.FormatAmount(u.Scale(t.CurrentBytes), u), diet.FormatAmount(u.Scale(t.ProposedBytes), u), u, t.SavedPct())
		if optQuiet {
			return nil
		}
		return rep.Encode(cmd.OutOrStdout(), format)
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	optInput.bind(optimizeCmd)
	optDiet.bind(optimizeCmd)
	optimizeCmd.Flags().StringVar(&optOut, "out", "", "output path (.parquet or .arrow)")
	optimizeCmd.Flags().StringVar(&optCompression, "compression", "", "parquet codec: snappy|gzip|zstd|lz4|brotli|none (default from config)")
	optimizeCmd.Flags().BoolVarP(&optQuiet, "quiet", "q", false, "print only the summary line")
	_ = optimizeCmd.MarkFlagRequired("out")
}
