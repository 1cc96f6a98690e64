package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Print the path of the file holding a resource",
	Long: `Resolves a resource to a file in one of the neurobank archives on this
host, trying its locations in the order they were added. If the resource
can't be resolved, the reason for each location is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		resource, err := db.Resource(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path, err := resolver.NewOsResolver().ResolveToPath(resource)
		if err != nil {
			var unsupported resolver.SchemeNotSupportedError
			if errors.As(err, &unsupported) {
				for _, attempt := range unsupported.Attempts {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s (%s): %s\n",
						attempt.Archive, attempt.Scheme, attempt.Err)
				}
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
