package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/model"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history [username]",
	Short: "Show recorded state transitions for a user's jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(consoleURL("/users/"+url.PathEscape(args[0])+"/history") + "?json=1")
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var envelope struct {
		Status  string           `json:"status"`
		Data    []model.JobEvent `json:"data"`
		Message string           `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode history: %w", err)
	}
	if envelope.Status != "OK" {
		return fmt.Errorf("history failed: %s", envelope.Message)
	}

	events := envelope.Data
	if historyN > 0 && len(events) > historyN {
		events = events[:historyN]
	}

	if len(events) == 0 {
		fmt.Println("no history recorded")
		return nil
	}

	for _, e := range events {
		id := fmt.Sprint(e.JobID)
		if e.ArrayIndex != 0 {
			id = fmt.Sprintf("%d[%d]", e.JobID, e.ArrayIndex)
		}
		fmt.Printf("[%s] job %s: %s -> %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), id, e.FromState, e.ToState)
	}

	return nil
}

func init() {
	historyCmd.Flags().IntVarP(&historyN, "number", "n", 0, "Show at most n events")
	rootCmd.AddCommand(historyCmd)
}
