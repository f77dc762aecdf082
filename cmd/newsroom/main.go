// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/newsroom"
	"github.com/poiesic/newsroom/config"
	"github.com/poiesic/newsroom/httpapi"
	"github.com/poiesic/newsroom/schedule"
	"github.com/poiesic/newsroom/stream"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "newsroom",
		Usage: "News ingestion, enrichment and archiving",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file (default $NEWSROOM_CONFIG)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run scheduled ingestion and the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "HTTP listen address",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Time between ingestion cycles",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Articles fetched per cycle",
					},
					&cli.BoolFlag{
						Name:  "no-publish",
						Usage: "Do not publish raw batches to the stream",
					},
				},
			},
			{
				Name:   "fetch",
				Usage:  "Run a single ingestion cycle and print the stored IDs",
				Action: fetchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Articles to fetch",
					},
					&cli.BoolFlag{
						Name:  "no-publish",
						Usage: "Do not publish the raw batch to the stream",
					},
				},
			},
			{
				Name:   "consume",
				Usage:  "Archive stream messages into the document store",
				Action: consumeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Topic to consume",
					},
					&cli.StringFlag{
						Name:  "group",
						Usage: "Consumer group ID",
					},
					&cli.DurationFlag{
						Name:  "ping-timeout",
						Usage: "Time allowed to reach the document store at startup",
						Value: 10 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "stats-interval",
						Usage: "Interval between consumer statistics log lines",
						Value: stream.DefaultStatsInterval,
					},
				},
			},
		},
	}
}

// loadConfig reads the configuration and applies command flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("interval") {
		cfg.Ingestion.Interval = c.Duration("interval")
	}
	if c.IsSet("limit") {
		cfg.Ingestion.Limit = c.Int("limit")
	}
	if c.Bool("no-publish") {
		cfg.Stream.Enabled = false
	}
	if c.IsSet("topic") {
		cfg.Stream.Topic = c.String("topic")
	}
	if c.IsSet("group") {
		cfg.Stream.GroupID = c.String("group")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newsroom.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Close()

	ticker, err := schedule.NewTicker(func(ctx context.Context) error {
		_, err := svc.RunCycle(ctx, cfg.Ingestion.Limit)
		return err
	}, schedule.WithInterval(cfg.Ingestion.Interval))
	if err != nil {
		return err
	}

	server := httpapi.NewServer(cfg.Server.Addr, svc.Store(), svc.Pipeline(), slog.Default())
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	ticker.Start(ctx)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "err", err)
	}
	return nil
}

func fetchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	svc, err := newsroom.NewService(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Close()

	ids, err := svc.RunCycle(c.Context, cfg.Ingestion.Limit)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	for _, id := range ids {
		fmt.Fprintln(c.App.Writer, id)
	}
	slog.Info("fetch complete", "stored", len(ids))
	return nil
}

func consumeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, c.Duration("ping-timeout"))
	defer cancel()

	store, err := newsroom.OpenDocStore(pingCtx, cfg.DocStore)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Error("error closing document store", "err", err)
		}
	}()

	if err := store.Ping(pingCtx); err != nil {
		return fmt.Errorf("document store unreachable: %w", err)
	}

	reader := stream.NewKafkaReader(cfg.Stream.Brokers, cfg.Stream.GroupID, cfg.Stream.Topic)
	consumer, err := stream.NewConsumer(reader, store,
		stream.WithStatsInterval(c.Duration("stats-interval")),
		stream.WithConsumerLogger(slog.Default()))
	if err != nil {
		reader.Close()
		return err
	}
	defer consumer.Close()

	slog.Info("consumer started",
		"brokers", strings.Join(cfg.Stream.Brokers, ","),
		"topic", cfg.Stream.Topic,
		"group", cfg.Stream.GroupID)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer stopped: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
