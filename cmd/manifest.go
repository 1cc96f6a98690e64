package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/manifest"
	"github.com/melizalab/nbank-registry/resolver"
)

var manifestOutput string

var manifestCmd = &cobra.Command{
	Use:   "manifest <archive>",
	Short: "Describe a neurobank archive as a Frictionless data package",
	Long: `Writes a data package listing every resource located in the named
neurobank archive whose content is a file under the archive root on this
host. Paths in the package are relative to the archive root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		pkg, err := manifest.ForArchive(cmd.Context(), db, resolver.NewOsResolver(), args[0])
		if err != nil {
			return err
		}
		if manifestOutput != "" {
			return manifest.Save(pkg, manifestOutput)
		}
		data, err := json.MarshalIndent(pkg.Descriptor(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	manifestCmd.Flags().StringVarP(&manifestOutput, "output", "o", "",
		"file to write (default: standard output)")
	rootCmd.AddCommand(manifestCmd)
}
