package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/auth"
	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
	"github.com/bopopescu/openlava-web/internal/config"
	"github.com/bopopescu/openlava-web/internal/console"
	"github.com/bopopescu/openlava-web/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web console daemon",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	secret := cfg.JWTSecret
	if secret == "" {
		var err error
		if secret, err = auth.LoadOrCreateSecret(); err != nil {
			return err
		}
	}

	cluster.Sentinels.Apply(cfg.Sentinels)
	config.Watch(func(next *config.Config) {
		cluster.Sentinels.Apply(next.Sentinels)
		logger.Log.Info("config reloaded")
	})

	client := upstream.New(cfg.ClusterURL, cfg.ClusterTimeout)
	tokens := auth.NewTokenManager(secret, cfg.SessionTTL)

	srv := console.NewServer(cfg, client, tokens)
	srv.Start()

	logger.Log.Info("console started",
		zap.Int("port", cfg.Port),
		zap.String("cluster_url", cfg.ClusterURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down", zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Log.Error("failed to stop server cleanly", zap.Error(err))
		return err
	}

	logger.Log.Info("console stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
