package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/core"
)

var (
	dtypeDownloadable bool
	dtypeExtension    string
)

var dtypeCmd = &cobra.Command{
	Use:   "dtype",
	Short: "Manage datatypes",
}

var dtypeAddCmd = &cobra.Command{
	Use:   "add <name> <content-type>",
	Short: "Add a datatype",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.CreateDataType(cmd.Context(), core.DataType{
			Name:         args[0],
			ContentType:  args[1],
			Downloadable: dtypeDownloadable,
			Extension:    dtypeExtension,
		})
	},
}

var dtypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datatypes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		dtypes, err := db.ListDataTypes(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCONTENT TYPE\tDOWNLOADABLE\tEXTENSION")
		for _, dtype := range dtypes {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
				dtype.Name, dtype.ContentType, dtype.Downloadable, dtype.Extension)
		}
		return w.Flush()
	},
}

var dtypeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a datatype no resource uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.DeleteDataType(cmd.Context(), args[0])
	},
}

func init() {
	dtypeAddCmd.Flags().BoolVarP(&dtypeDownloadable, "downloadable", "d", false,
		"resources of this type can be downloaded from the registry")
	dtypeAddCmd.Flags().StringVarP(&dtypeExtension, "extension", "e", "",
		"filename extension for downloads")
	dtypeCmd.AddCommand(dtypeAddCmd, dtypeListCmd, dtypeDeleteCmd)
	rootCmd.AddCommand(dtypeCmd)
}
