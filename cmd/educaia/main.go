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
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/educaia/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "educaia",
		Usage: "Answer questions about the university from a knowledge base",
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
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question, or start an interactive session when none is given",
				ArgsUsage: "[question]",
				Action:    askCommand,
				Flags:     append(knowledgeFlags(), embeddingFlags()...),
			},
			{
				Name:      "explain",
				Usage:     "Show how every passage scores against a question",
				ArgsUsage: "<question>",
				Action:    explainCommand,
				Flags:     append(knowledgeFlags(), embeddingFlags()...),
			},
			{
				Name:      "import",
				Usage:     "Store a knowledge base file in the database and embed its passages",
				ArgsUsage: "[file]",
				Action:    importCommand,
				Flags: append([]cli.Flag{
					dbFlag(true),
					&cli.StringFlag{
						Name:  "name",
						Usage: "Name to store the knowledge base under (defaults to the file name)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of passages embedded per call",
						Value: 32,
					},
				}, embeddingFlags()...),
			},
			{
				Name:   "list",
				Usage:  "List the knowledge bases stored in the database",
				Action: listCommand,
				Flags:  []cli.Flag{dbFlag(true)},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the stored vectors of every knowledge base",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					dbFlag(true),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of passages to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N passages",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "purge",
						Usage: "Delete the model's stored vectors before reembedding",
					},
				}, embeddingFlags()...),
			},
			{
				Name:   "serve",
				Usage:  "Serve the question API over HTTP",
				Action: serveCommand,
				Flags: append(append(knowledgeFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Reload the knowledge base when the file changes",
					},
				), embeddingFlags()...),
			},
		},
	}
}

func dbFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: required,
	}
}

// knowledgeFlags select the knowledge base and answering threshold.
func knowledgeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kb",
			Aliases: []string{"k"},
			Usage:   "Path to the knowledge base file, one passage per line",
		},
		&cli.Float64Flag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Minimum score for an answer",
		},
		dbFlag(false),
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Embedding backend (openai, static)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
	}
}

// loadSettings reads the configuration file and environment, then applies
// any flags set on the command line.
func loadSettings(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("kb") {
		cfg.KnowledgeBase = c.String("kb")
	}
	if c.IsSet("threshold") {
		cfg.Threshold = c.Float64("threshold")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("watch") {
		cfg.Watch = c.Bool("watch")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("embedding-host") {
		cfg.EmbeddingHost = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.EmbeddingModel = c.String("embedding-model")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")
	if !c.IsSet("log-level") {
		if cfg, err := config.Load(c.String("config")); err == nil && cfg.LogLevel != "" {
			levelStr = cfg.LogLevel
		}
	}

	level, err := config.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
