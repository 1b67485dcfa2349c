package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running daemon",
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	resp, err := http.Post(consoleURL("/stop"), "", nil)
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	fmt.Println("console stopping")
	return nil
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
