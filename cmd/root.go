package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/config"
	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "nbank-registry",
	Short: "A registry for neurobank data resources",
	Long: `A registry of named data resources, their datatypes, and the archives
that store them. The registry serves a REST API and, when a resource's
content is in a neurobank archive on this host, the content itself.`,
	Version:      core.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "nbank-registry.yaml",
		"configuration file")
}

// reads the configuration file and sets up logging as it directs
func loadConfig() error {
	slog.Debug(fmt.Sprintf("Reading configuration from '%s'...", cfgFile))
	b, err := os.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("Couldn't read configuration: %w", err)
	}
	if err := core.Init(b); err != nil {
		return fmt.Errorf("Couldn't initialize the configuration: %w", err)
	}
	setupLogging()
	return nil
}

// installs the default structured logger described by the configuration
func setupLogging() {
	options := &slog.HandlerOptions{Level: config.Logging.SlogLevel()}
	var handler slog.Handler
	if strings.ToLower(config.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	slog.SetDefault(slog.New(handler))
}

// loads the configuration and opens the registry database it names
func openStore() (*store.Store, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	return store.OpenFromConfig()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
