package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bopopescu/openlava-web/internal/config"
	"github.com/bopopescu/openlava-web/internal/db"
	"github.com/bopopescu/openlava-web/internal/logger"
)

var (
	cfg     *config.Config
	cfgFile string
	debug   bool
)

// clientCmds talk to a running daemon over HTTP and do not need the
// account database opened locally.
var clientCmds = map[string]bool{
	"status":  true,
	"stop":    true,
	"jobs":    true,
	"history": true,
	"dash":    true,
}

var rootCmd = &cobra.Command{
	Use:   "olweb",
	Short: "Web console for openlava batch scheduling clusters",
	Long: `olweb serves a web console in front of an openlava (or compatible)
batch scheduler. It proxies cluster state to browsers, streams live job
tables over websockets, and keeps its own account database for logins.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if !clientCmds[cmd.Name()] {
			if err := db.Init(cfg.DBPath); err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
		}

		return nil
	},
}

// consoleURL builds a URL for talking to the local daemon.
func consoleURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.Port, path)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
}
