package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dtypediet/internal/diet"
	"github.com/KaramelBytes/dtypediet/internal/sample"
)

var (
	demoRows   int
	demoDiet   dietFlags
	demoOutput string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the report on the built-in example dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if demoRows <= 0 {
			return fmt.Errorf("--rows must be > 0")
		}
		opt, format, err := demoDiet.options(cmd, currentConfig(), "demo")
		if err != nil {
			return err
		}
		rep, err := diet.BuildReport(sample.Dataset(demoRows), opt)
		if err != nil {
			return err
		}
		return emit(cmd, rep, format, demoOutput)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoDiet.bind(demoCmd)
	demoCmd.Flags().IntVar(&demoRows, "rows", sample.DefaultRows, "rows in the example dataset")
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "", "optional path to write the report")
}
