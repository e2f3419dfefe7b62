package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dtypediet/internal/diet"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the dtypes tried for each source dtype",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tCANDIDATES (widest first)")
		for _, k := range diet.SourceKinds() {
			var names []string
			for _, c := range diet.Candidates(k) {
				names = append(names, c.String())
			}
			fmt.Fprintf(tw, "%s\t%s\n", k, strings.Join(names, ", "))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
