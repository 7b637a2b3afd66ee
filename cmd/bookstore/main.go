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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/bookstore"
	"github.com/poiesic/bookstore/config"
	"github.com/poiesic/bookstore/httpapi"
	"github.com/poiesic/bookstore/seed"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bookstore",
		Usage: "Book and review catalog service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the catalog over HTTP",
				Action: serveCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "HTTP listen address (overrides " + config.EnvHTTPAddr + ")",
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Requests per second per client, 0 disables (overrides " + config.EnvRateLimitRPS + ")",
					},
				),
			},
			{
				Name:   "seed",
				Usage:  "Replace the catalog contents with fixture data",
				Action: seedCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:    "fixtures",
						Aliases: []string{"f"},
						Usage:   "Directory containing " + seed.BooksFile + " and " + seed.ReviewsFile,
						Value:   "fixtures",
					},
				),
			},
		},
	}
}

// storageFlags override the environment when set.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Persistence backend: recordset or mongo (overrides " + config.EnvBackend + ")",
		},
		&cli.StringFlag{
			Name:  "medium",
			Usage: "Record-set medium: file or badger (overrides " + config.EnvMedium + ")",
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Record-set data directory (overrides " + config.EnvDataDir + ")",
		},
		&cli.StringFlag{
			Name:  "badger-dir",
			Usage: "Badger database directory (overrides " + config.EnvBadgerDir + ")",
		},
		&cli.StringFlag{
			Name:  "mongo-uri",
			Usage: "MongoDB connection string (overrides " + config.EnvMongoURI + ")",
		},
		&cli.StringFlag{
			Name:  "mongo-db",
			Usage: "MongoDB database name (overrides " + config.EnvMongoDB + ")",
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.ConfigOption
	if c.IsSet("backend") {
		opts = append(opts, config.WithBackend(c.String("backend")))
	}
	if c.IsSet("medium") {
		opts = append(opts, config.WithMedium(c.String("medium")))
	}
	if c.IsSet("data-dir") {
		opts = append(opts, config.WithDataDir(c.String("data-dir")))
	}
	if c.IsSet("badger-dir") {
		opts = append(opts, config.WithBadgerDir(c.String("badger-dir")))
	}
	if c.IsSet("mongo-uri") || c.IsSet("mongo-db") {
		opts = append(opts, func(cfg *config.Config) {
			if c.IsSet("mongo-uri") {
				cfg.MongoURI = c.String("mongo-uri")
			}
			if c.IsSet("mongo-db") {
				cfg.MongoDB = c.String("mongo-db")
			}
		})
	}
	if c.IsSet("addr") {
		opts = append(opts, config.WithHTTPAddr(c.String("addr")))
	}
	if c.IsSet("rate-limit") {
		opts = append(opts, func(cfg *config.Config) {
			cfg.RateLimitRPS = c.Float64("rate-limit")
		})
	}

	cfg, err := config.FromEnv(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

	cat, err := bookstore.NewCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close(context.Background())

	srv := httpapi.New(cat, httpapi.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	return srv.Serve(ctx, cfg.HTTPAddr)
}

func seedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	cat, err := bookstore.NewCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close(context.Background())

	seeder, err := seed.NewSeeder(cat.BookCollection(), cat.ReviewCollection())
	if err != nil {
		return err
	}
	defer seeder.Release()

	res, err := seeder.SeedDir(ctx, c.String("fixtures"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Seeded %d books and %d reviews.\n", res.Books, res.Reviews)
	return nil
}

func setupLogger(c *cli.Context) error {
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
