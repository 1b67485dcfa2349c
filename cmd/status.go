package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/dashboard"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and attached live views",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(consoleURL("/status"))
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var status struct {
		Uptime   string            `json:"uptime"`
		Sessions []dashboard.Stats `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode status: %w", err)
	}

	fmt.Printf("console up %s\n", status.Uptime)

	if len(status.Sessions) == 0 {
		fmt.Println("no live views attached")
		return nil
	}

	fmt.Println()
	fmt.Printf("%-12s %-20s %-10s %-9s %s\n", "USER", "ATTACHED", "REFRESHES", "FAILURES", "ROWS")
	for _, s := range status.Sessions {
		fmt.Printf("%-12s %-20s %-10d %-9d %d\n",
			s.User, s.StartedAt.Format("2006-01-02 15:04:05"), s.Refreshes, s.Failures, s.TableRows)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
