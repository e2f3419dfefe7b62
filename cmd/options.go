package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dtypediet/internal/config"
	"github.com/KaramelBytes/dtypediet/internal/diet"
	"github.com/KaramelBytes/dtypediet/internal/loader"
	"github.com/KaramelBytes/dtypediet/internal/logger"
	"github.com/KaramelBytes/dtypediet/internal/utils"
)

// inputFlags are the loader settings shared by commands that read a file.
type inputFlags struct {
	delimiter  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default: sniff from extension)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *inputFlags) options(cmd *cobra.Command, c *cfgpkg.Global) (loader.Options, error) {
	opt := loader.DefaultOptions()
	opt.MaxRows = c.MaxRows
	if cmd.Flags().Changed("max-rows") {
		opt.MaxRows = f.maxRows
	}
	if opt.MaxRows < 0 {
		return opt, fmt.Errorf("--max-rows must be >= 0")
	}
	delim := c.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delim = f.delimiter
	}
	d, err := cfgpkg.ParseDelimiter(delim)
	if err != nil {
		return opt, fmt.Errorf("unsupported --delimiter: %w", err)
	}
	opt.Delimiter = d
	opt.SheetName = f.sheetName
	opt.SheetIndex = f.sheetIndex
	return opt, nil
}

// dietFlags are the comparison and display settings of a report.
type dietFlags struct {
	unit   string
	format string
	approx bool
	rtol   float64
	atol   float64
}

func (f *dietFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.unit, "unit", "", "memory unit: byte|KB|MB|GB (default from config)")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: markdown|table|json|yaml (default from config)")
	cmd.Flags().BoolVar(&f.approx, "approx", false, "accept candidates whose values match within tolerance (lossy)")
	cmd.Flags().Float64Var(&f.rtol, "rtol", 0, "relative tolerance for --approx (default from config)")
	cmd.Flags().Float64Var(&f.atol, "atol", 0, "absolute tolerance for --approx (default from config)")
}

func (f *dietFlags) options(cmd *cobra.Command, c *cfgpkg.Global, source string) (diet.Options, diet.Format, error) {
	opt := diet.DefaultOptions()
	unit := c.DefaultUnit
	if cmd.Flags().Changed("unit") {
		unit = f.unit
	}
	u, err := diet.ParseUnit(unit)
	if err != nil {
		return opt, "", err
	}
	format := c.OutputFormat
	if cmd.Flags().Changed("format") {
		format = f.format
	}
	ft, err := diet.ParseFormat(format)
	if err != nil {
		return opt, "", err
	}
	opt.Unit = u
	opt.Source = source
	opt.Approx = f.approx
	opt.Tolerance = diet.Tolerance{Rel: c.ApproxRelTol, Abs: c.ApproxAbsTol}
	if cmd.Flags().Changed("rtol") {
		opt.Tolerance.Rel = f.rtol
	}
	if cmd.Flags().Changed("atol") {
		opt.Tolerance.Abs = f.atol
	}
	if opt.Tolerance.Rel < 0 || opt.Tolerance.Abs < 0 {
		return opt, "", fmt.Errorf("--rtol and --atol must be >= 0")
	}
	opt.Logger = logger.Get()
	return opt, ft, nil
}

// emit renders rep to the output path, or to w when path is empty.
func emit(cmd *cobra.Command, rep *diet.Report, format diet.Format, path string) error {
	if path == "" {
		return rep.Encode(cmd.OutOrStdout(), format)
	}
	var buf bytes.Buffer
	if err := rep.Encode(&buf, format); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", path)
	return nil
}

func warn(w io.Writer, msgs []string) {
	for _, m := range msgs {
		fmt.Fprintf(w, "⚠ Warning: %s\n", m)
	}
}
