package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dtypediet/internal/diet"
)

var (
	rbInput  inputFlags
	rbDiet   dietFlags
	rbOutDir string
	rbQuiet  bool
)

var reportBatchCmd = &cobra.Command{
	Use:   "report-batch <files...>",
	Short: "Report several files (globs allowed) with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if rbOutDir != "" {
			if err := os.MkdirAll(rbOutDir, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", rbOutDir, err)
			}
		}
		used := map[string]bool{}
		for i, f := range files {
			if !rbQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", i+1, len(files), f)
			}
			rep, _, format, err := buildFileReport(cmd, f, &rbInput, &rbDiet)
			if err != nil {
				return err
			}
			if rbOutDir == "" {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := rep.Encode(cmd.OutOrStdout(), format); err != nil {
					return err
				}
				continue
			}
			out := batchOutputPath(rbOutDir, f, format, used)
			if err := emit(cmd, rep, format, out); err != nil {
				return err
			}
		}
		if !rbQuiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Reported %d file(s)\n", len(files))
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// batchOutputPath derives a report path in dir from the input base name.
// Names already handed out or present on disk get a _2, _3, ... suffix.
func batchOutputPath(dir, path string, format diet.Format, used map[string]bool) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := map[diet.Format]string{
		diet.FormatMarkdown: "md",
		diet.FormatTable:    "txt",
		diet.FormatJSON:     "json",
		diet.FormatYAML:     "yaml",
	}[format]
	out := filepath.Join(dir, stem+".report."+ext)
	for idx := 2; taken(out, used); idx++ {
		out = filepath.Join(dir, fmt.Sprintf("%s_%d.report.%s", stem, idx, ext))
	}
	used[out] = true
	return out
}

func taken(path string, used map[string]bool) bool {
	if used[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func init() {
	rootCmd.AddCommand(reportBatchCmd)
	rbInput.bind(reportBatchCmd)
	rbDiet.bind(reportBatchCmd)
	reportBatchCmd.Flags().StringVar(&rbOutDir, "out-dir", "", "write one report per input into this directory")
	reportBatchCmd.Flags().BoolVarP(&rbQuiet, "quiet", "q", false, "suppress progress output")
}
