package cmd

import (
	"errors"
	"fmt"

	"github.com/spigell/interview-coach/internal/auth"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts allowed to use the assistant",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new account in the users file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		usersFile := viper.GetString("auth.users-file")
		if usersFile == "" {
			return errors.New("users file is not configured (set auth.users-file or --users-file)")
		}

		store, err := auth.Open(usersFile)
		if err != nil {
			return err
		}

		identity, err := signUp(store)
		if err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "registered %s in %s\n", identity.Email, usersFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)

	usersCmd.PersistentFlags().String("users-file", "", "path to the users file")
	viper.BindPFlag("auth.users-file", usersCmd.PersistentFlags().Lookup("users-file"))
}
