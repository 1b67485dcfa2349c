package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
	"github.com/bopopescu/openlava-web/internal/tui"
)

var dashInterval time.Duration

var dashCmd = &cobra.Command{
	Use:   "dash [username]",
	Short: "Live terminal dashboard for one user's jobs",
	Long: `dash renders a terminal dashboard that polls the scheduler directly,
without needing a running daemon. It shows the user's job counters and a
scrolling job table, refreshed on an interval.`,
	Args: cobra.ExactArgs(1),
	RunE: runDash,
}

func runDash(cmd *cobra.Command, args []string) error {
	cluster.Sentinels.Apply(cfg.Sentinels)

	interval := cfg.PollInterval
	if dashInterval > 0 {
		interval = dashInterval
	}

	client := upstream.New(cfg.ClusterURL, cfg.ClusterTimeout)
	return tui.Run(client, args[0], interval)
}

func init() {
	dashCmd.Flags().DurationVar(&dashInterval, "interval", 0, "Refresh interval (default from config)")
	rootCmd.AddCommand(dashCmd)
}
