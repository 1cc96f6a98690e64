package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the registry and API versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nbank-registry %s (API %s)\n", core.Version, core.ApiVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
