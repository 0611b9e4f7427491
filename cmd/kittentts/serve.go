package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run KittenTTS HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := server.New(server.ServerConfig{
				ListenAddr:     cfg.Server.ListenAddr,
				Workers:        cfg.Server.Workers,
				MaxTextBytes:   cfg.Server.MaxTextBytes,
				RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
			}, rt.svc, rt.voices, nil)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	defaults := config.DefaultConfig()
	config.RegisterFlags(cmd.Flags(), defaults)

	return cmd
}
