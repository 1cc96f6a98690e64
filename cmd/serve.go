package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/auth"
	"github.com/melizalab/nbank-registry/config"
	"github.com/melizalab/nbank-registry/core"
	"github.com/melizalab/nbank-registry/resolver"
	"github.com/melizalab/nbank-registry/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the registry service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		authenticator, err := auth.NewAuthenticator()
		if err != nil {
			db.Close()
			return fmt.Errorf("Couldn't read users: %w", err)
		}
		service, err := services.NewRegistryService(db, resolver.NewOsResolver(), authenticator)
		if err != nil {
			db.Close()
			return err
		}

		// Start the service in a goroutine so it doesn't block.
		errChan := make(chan error, 1)
		go func() {
			errChan <- service.Start(config.Service.Port)
		}()

		// Intercept the SIGINT, SIGHUP, SIGTERM, and SIGQUIT signals, shutting down
		// the service as gracefully as possible if they are encountered.
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan,
			syscall.SIGINT,
			syscall.SIGHUP,
			syscall.SIGTERM,
			syscall.SIGQUIT)

		// Block till we receive one of the above signals or the service fails.
		select {
		case err := <-errChan:
			service.Close()
			return err
		case <-sigChan:
		}

		// Create a deadline to wait for.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Wait for connections to close until the deadline elapses.
		err = service.Shutdown(ctx)
		slog.Info(fmt.Sprintf("Shutting down after %.0f seconds", core.Uptime()))
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
