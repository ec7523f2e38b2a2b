package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at release time with -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gush version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gush %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
