package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/store"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archives",
}

var archiveAddCmd = &cobra.Command{
	Use:   "add <name> <scheme> <root>",
	Short: "Add an archive",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.CreateArchive(cmd.Context(), core.Archive{
			Name:   args[0],
			Scheme: args[1],
			Root:   args[2],
		})
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		archives, err := db.ListArchives(cmd.Context(), store.ArchiveFilter{})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCHEME\tROOT")
		for _, archive := range archives {
			fmt.Fprintf(w, "%s\t%s\t%s\n", archive.Name, archive.Scheme, archive.Root)
		}
		return w.Flush()
	},
}

func init() {
	archiveCmd.AddCommand(archiveAddCmd, archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}
