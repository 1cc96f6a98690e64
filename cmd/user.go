package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fernet/fernet-go"
	"github.com/spf13/cobra"

	"github.com/melizalab/nbank-registry/auth"
	"github.com/melizalab/nbank-registry/config"
)

var userSecret string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Maintain the users file",
	Long: `Users are listed in a tab-separated file with one record per line:

  username <TAB> email <TAB> superuser (true/false) <TAB> bcrypt password hash

The file may be encrypted with a fernet key given as auth.secret in the
configuration (preferably through an environment variable).`,
}

var userHashCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from standard input and print its hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(cmd.InOrStdin())
		password, err := reader.ReadString('\n')
		if err != nil && password == "" {
			return fmt.Errorf("Couldn't read password: %w", err)
		}
		hash, err := auth.HashPassword(strings.TrimRight(password, "\r\n"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var userEncryptCmd = &cobra.Command{
	Use:   "encrypt <users.tsv>",
	Short: "Encrypt a users file and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := userSecret
		if secret == "" {
			if err := loadConfig(); err != nil {
				return err
			}
			secret = config.Auth.Secret
		}
		if secret == "" {
			return fmt.Errorf("No secret was given with --secret or in the configuration")
		}
		plainText, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		token, err := auth.EncryptUsers(plainText, secret)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(token))
		return nil
	},
}

var userSecretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Print a new key for encrypting the users file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key.Encode())
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a user and everything they registered from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.DeleteUser(cmd.Context(), args[0])
	},
}

func init() {
	userEncryptCmd.Flags().StringVarP(&userSecret, "secret", "s", "",
		"fernet key (default: auth.secret from the configuration)")
	userCmd.AddCommand(userHashCmd, userEncryptCmd, userSecretCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
