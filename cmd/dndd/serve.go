package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dnd/internal/config"
	"github.com/vango-dev/dnd/internal/demo"
	"github.com/vango-dev/dnd/internal/errors"
	"github.com/vango-dev/dnd/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo board over WebSocket",
		Long: `Serve the demo board over WebSocket.

Settings come from dnd.json (or dnd.toml) in the working directory, or
from the file given with --config. Flags override the file. With --watch,
edits to the file change the drag settings of sessions opened afterwards.

Examples:
  dndd serve
  dndd serve --port=8080
  dndd serve --config=deploy/dnd.toml --watch
  dndd serve --config=deploy/dnd.json --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, server.WithMount(func(m *server.Mount) error {
				demo.Build(m.Document, m.Scope, m.Surface)
				return nil
			}))
			if watch {
				if cfg.Path() == "" {
					return errors.New("E140").
						WithDetail("--watch needs a configuration file").
						WithSuggestion("Pass --config or create dnd.json")
				}
				err := config.Watch(ctx, cfg.Path(), func(next *config.Config) {
					if err := srv.Reload(next); err != nil {
						slog.Warn("reload rejected", "error", err)
					}
				})
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Watching %s", cfg.Path())
			}
			success(cmd.OutOrStdout(), "Listening on ws://%s%s", cfg.Address(), cfg.Server.Path)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to dnd.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from dnd.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from dnd.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload drag settings when the config file changes")

	return cmd
}
