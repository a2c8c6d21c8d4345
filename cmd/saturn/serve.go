package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"aurora-hq/saturn/pkg/config"
	"aurora-hq/saturn/pkg/discovery"
	"aurora-hq/saturn/pkg/server"
)

var serveFlags struct {
	listenAddress string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Saturn HTTP server",
	Long: `Start the Saturn HTTP server.

The server performs an initial discovery cycle, then serves the ranked
provider registry and the analysis routing endpoint. The registry is
refreshed when its TTL lapses, when a caller forces a refresh, on the
configured cron schedule, and whenever the configuration file changes.

Examples:
  # Start with defaults and environment credentials
  saturn serve

  # Start with a config file
  saturn serve --config /etc/saturn/config.yaml

  # Validate config without starting
  saturn serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	s, err := newStack(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := context.Background()
	s.cache.Discover(ctx, true, "startup")

	if schedule := cfg.Discovery.RefreshSchedule; schedule != "" {
		refresher, err := discovery.NewRefresher(s.cache, schedule, s.log)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, func() {
			s.log.Info("configuration changed, forcing rediscovery")
			s.cache.Discover(context.Background(), true, "config")
		}, s.log)
		if err != nil {
			s.log.Warn("config watcher unavailable", slog.String("error", err.Error()))
		} else if err := watcher.Start(); err != nil {
			s.log.Warn("config watcher failed to start", slog.String("error", err.Error()))
		} else {
			defer watcher.Stop()
		}
	}

	srv := server.NewServer(cfg, s.router, s.store, s.collector, s.log)
	return srv.Start(ctx)
}
