package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/autostart"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the autostart registration",
	RunE:  runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	starter := autostart.New()

	installed, err := starter.IsInstalled()
	if err != nil {
		return fmt.Errorf("failed to check install state: %w", err)
	}
	if !installed {
		fmt.Println("console is not registered for autostart")
		return nil
	}

	if err := starter.Uninstall(); err != nil {
		return fmt.Errorf("failed to uninstall: %w", err)
	}

	fmt.Println("autostart registration removed")
	return nil
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
