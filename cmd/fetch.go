package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/client"
)

var (
	fetchOutput  string
	fetchTimeout time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <registry-url> <name>",
	Short: "Download a resource from a registry",
	Long: `Downloads the content of a resource from the registry at the given URL.
The file is named as the registry suggests unless --output is given; use
"--output -" to write to standard output.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.New(args[0], fetchTimeout, nil)
		if err != nil {
			return err
		}
		name := args[1]

		target := fetchOutput
		if target == "" {
			resource, err := c.Resource(cmd.Context(), name)
			if err != nil {
				return err
			}
			target = resource.Filename
		}

		var w io.Writer = cmd.OutOrStdout()
		if target != "-" {
			file, err := os.Create(target)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}
		_, n, err := c.Download(cmd.Context(), name, w)
		if err != nil {
			if target != "-" {
				os.Remove(target)
			}
			return err
		}
		slog.Info(fmt.Sprintf("Fetched %s (%d bytes)", name, n))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "",
		"file to write (default: the filename suggested by the registry)")
	fetchCmd.Flags().DurationVarP(&fetchTimeout, "timeout", "t", 5*time.Minute,
		"time limit for the download")
	rootCmd.AddCommand(fetchCmd)
}
