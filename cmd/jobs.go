package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

var (
	jobsUser  string
	jobsQueue string
	jobsHost  string
	jobsState string
	jobsName  string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs through a running daemon",
	RunE:  runJobs,
}

func runJobs(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	q.Set("json", "1")
	if jobsUser != "" {
		q.Set("user_name", jobsUser)
	}
	if jobsQueue != "" {
		q.Set("queue_name", jobsQueue)
	}
	if jobsHost != "" {
		q.Set("host_name", jobsHost)
	}
	if jobsState != "" {
		q.Set("job_state", jobsState)
	}
	if jobsName != "" {
		q.Set("job_name", jobsName)
	}

	resp, err := http.Get(consoleURL("/jobs/") + "?" + q.Encode())
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var envelope struct {
		Status  string               `json:"status"`
		Data    []cluster.JobSummary `json:"data"`
		Message string               `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode job list: %w", err)
	}
	if envelope.Status != "OK" {
		return fmt.Errorf("job list failed: %s", envelope.Message)
	}

	if len(envelope.Data) == 0 {
		fmt.Println("no jobs found")
		return nil
	}

	fmt.Printf("%-12s %-12s %-22s %-12s %s\n", "JOB", "USER", "STATUS", "QUEUE", "NAME")
	for _, j := range envelope.Data {
		fmt.Printf("%-12s %-12s %-22s %-12s %s\n",
			j.DisplayID(), j.UserName, j.Status.Friendly, j.Queue, j.Name)
	}

	return nil
}

func init() {
	jobsCmd.Flags().StringVar(&jobsUser, "user", "", "Filter by user name")
	jobsCmd.Flags().StringVar(&jobsQueue, "queue", "", "Filter by queue name")
	jobsCmd.Flags().StringVar(&jobsHost, "host", "", "Filter by execution host")
	jobsCmd.Flags().StringVar(&jobsState, "state", "", "Filter by state (ACT, ALL, EXIT, PEND, RUN, SUSP)")
	jobsCmd.Flags().StringVar(&jobsName, "name", "", "Filter by job name")
	rootCmd.AddCommand(jobsCmd)
}
