package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dtypediet/internal/diet"
	"github.com/KaramelBytes/dtypediet/internal/frame"
	"github.com/KaramelBytes/dtypediet/internal/loader"
)

var (
	repInput  inputFlags
	repDiet   dietFlags
	repOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Report the narrowest lossless dtype and memory saving per column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, _, format, err := buildFileReport(cmd, args[0], &repInput, &repDiet)
		if err != nil {
			return err
		}
		return emit(cmd, rep, format, repOutput)
	},
}

// buildFileReport loads path and runs the best-fit search over its columns.
func buildFileReport(cmd *cobra.Command, path string, in *inputFlags, df *dietFlags) (*diet.Report, *frame.Dataset, diet.Format, error) {
	c := currentConfig()
	lopt, err := in.options(cmd, c)
	if err != nil {
		return nil, nil, "", err
	}
	// validate report flags before reading a potentially large file
	if _, _, err := df.options(cmd, c, ""); err != nil {
		return nil, nil, "", err
	}
	tbl, err := loader.Load(cmd.Context(), path, lopt)
	if err != nil {
		return nil, nil, "", err
	}
	warn(cmd.ErrOrStderr(), tbl.Warnings)
	dopt, format, err := df.options(cmd, c, tbl.Name)
	if err != nil {
		return nil, nil, "", err
	}
	rep, err := diet.BuildReport(tbl.Data, dopt)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%s: %w", tbl.Name, err)
	}
	return rep, tbl.Data, format, nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	repInput.bind(reportCmd)
	repDiet.bind(reportCmd)
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "optional path to write the report")
}
