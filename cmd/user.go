package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/auth"
	"github.com/bopopescu/openlava-web/internal/repository"
)

var userPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage console accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Add a console account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userPassword == "" {
			return fmt.Errorf("--password is required")
		}

		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}

		account, err := repository.NewAccountRepository().Add(args[0], hash)
		if err != nil {
			return fmt.Errorf("failed to add account: %w", err)
		}

		fmt.Printf("account %s added\n", account.Username)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List console accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := repository.NewAccountRepository().GetAll()
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}

		if len(accounts) == 0 {
			fmt.Println("no accounts")
			return nil
		}

		fmt.Printf("%-16s %-8s %s\n", "USERNAME", "ACTIVE", "CREATED")
		for _, a := range accounts {
			fmt.Printf("%-16s %-8t %s\n",
				a.Username, a.Active, a.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove [username]",
	Short: "Remove a console account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository.NewAccountRepository().Delete(args[0]); err != nil {
			return fmt.Errorf("failed to remove account: %w", err)
		}
		fmt.Printf("account %s removed\n", args[0])
		return nil
	},
}

var userActivateCmd = &cobra.Command{
	Use:   "activate [username]",
	Short: "Allow an account to log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository.NewAccountRepository().SetActive(args[0], true); err != nil {
			return fmt.Errorf("failed to activate account: %w", err)
		}
		fmt.Printf("account %s activated\n", args[0])
		return nil
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate [username]",
	Short: "Block an account from logging in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository.NewAccountRepository().SetActive(args[0], false); err != nil {
			return fmt.Errorf("failed to deactivate account: %w", err)
		}
		fmt.Printf("account %s deactivated\n", args[0])
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd [username]",
	Short: "Set an account password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userPassword == "" {
			return fmt.Errorf("--password is required")
		}

		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}

		if err := repository.NewAccountRepository().SetPassword(args[0], hash); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}
		fmt.Printf("password updated for %s\n", args[0])
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password for the account")
	userPasswdCmd.Flags().StringVar(&userPassword, "password", "", "Password for the account")

	userCmd.AddCommand(userAddCmd, userListCmd, userRemoveCmd,
		userActivateCmd, userDeactivateCmd, userPasswdCmd)
	rootCmd.AddCommand(userCmd)
}
