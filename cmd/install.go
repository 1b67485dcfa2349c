package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/autostart"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the console to start on login",
	RunE:  runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	starter := autostart.New()

	installed, err := starter.IsInstalled()
	if err != nil {
		return fmt.Errorf("failed to check install state: %w", err)
	}
	if installed {
		fmt.Println("console is already registered for autostart")
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := starter.Install(execPath); err != nil {
		return fmt.Errorf("failed to install: %w", err)
	}

	fmt.Println("console registered for autostart")
	return nil
}

func init() {
	rootCmd.AddCommand(installCmd)
}
