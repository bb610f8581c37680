package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the fxcalc CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fxcalc version %s\n", version)
		fmt.Fprintln(out, "Forex position size and pip value calculators")
		fmt.Fprintln(out, "https://github.com/rustyeddy/fxtools")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
