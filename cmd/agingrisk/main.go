package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/andresuchdata/agingrisk/internal/config"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/andresuchdata/agingrisk/internal/server"
	"github.com/andresuchdata/agingrisk/internal/storage"
	"github.com/andresuchdata/agingrisk/pkg/logger"
	"github.com/urfave/cli/v2"
)

const referenceDateLayout = "2006-01-02"

func main() {
	app := &cli.App{
		Name:  "agingrisk",
		Usage: "Score inventory batches for aging and obsolescence risk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			// Logs go to stderr so stdout carries only the result
			logger.Configure(config.Load().Log.Format, os.Stderr)
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Analyze a JSON feed file or the configured database and print the result as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "feed",
						Usage: "Path to a JSON feed with shipments, batches and optional prices (use - for stdin)",
					},
					&cli.StringFlag{
						Name:  "feed-object",
						Usage: "Object key of a JSON feed in the configured object store",
					},
					&cli.StringFlag{
						Name:  "archive-object",
						Usage: "Also upload the result to this object key",
					},
					&cli.BoolFlag{
						Name:  "source",
						Usage: "Read the feed from the configured database instead of a file",
					},
					&cli.StringFlag{
						Name:    "db-url",
						Usage:   "Database connection string (implies --source)",
						EnvVars: []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:  "reference-date",
						Usage: "Reference date in YYYY-MM-DD format",
						Value: time.Now().Format(referenceDateLayout),
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent workers per pipeline phase",
						EnvVars: []string{"PIPELINE_WORKERS"},
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Write the result to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent the JSON output",
					},
				},
				Action: runAnalyze,
			},
			{
				Name:  "archives",
				Usage: "List archived results in the configured object store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only list object keys with this prefix",
					},
				},
				Action: runArchives,
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Usage:   "Port to listen on",
						EnvVars: []string{"SERVER_PORT"},
					},
				},
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("agingrisk failed")
	}
}

func runAnalyze(c *cli.Context) error {
	cfg := config.Load()

	referenceDate, err := time.Parse(referenceDateLayout, c.String("reference-date"))
	if err != nil {
		return fmt.Errorf("invalid reference date: %w", err)
	}
	if c.IsSet("workers") {
		cfg.Risk.Workers = c.Int("workers")
	}
	if url := c.String("db-url"); url != "" {
		cfg.Database.URL = url
		cfg.Source.Enabled = true
	}
	if c.Bool("source") {
		cfg.Source.Enabled = true
	}

	feedPath := c.String("feed")
	feedObject := c.String("feed-object")
	archiveObject := c.String("archive-object")
	if feedPath == "" && feedObject == "" && !cfg.Source.Enabled {
		return fmt.Errorf("one of --feed, --feed-object or --source is required")
	}

	var objects storage.ObjectStorage
	if feedObject != "" || archiveObject != "" {
		client, err := storage.NewMinioClient(cfg.Objects)
		if err != nil {
			return err
		}
		objects = client
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := server.NewAgingRiskService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var result *agingrisk.Result
	switch {
	case feedPath != "" || feedObject != "":
		var feed agingrisk.Feed
		if feedPath != "" {
			feed, err = readFeed(feedPath)
		} else {
			feed, err = loadFeedObject(ctx, objects, feedObject)
		}
		if err != nil {
			return err
		}
		result, err = svc.Analyze(ctx, referenceDate, feed)
		if err != nil {
			return err
		}
	default:
		result, err = svc.AnalyzeSource(ctx, referenceDate)
		if err != nil {
			return err
		}
	}

	out := io.Writer(os.Stdout)
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeResult(out, result, c.Bool("pretty")); err != nil {
		return err
	}

	if archiveObject != "" {
		if err := archiveResult(ctx, objects, archiveObject, result); err != nil {
			return err
		}
		logger.Log.Info().Str("key", archiveObject).Msg("archived aging risk result")
	}
	return nil
}

func runArchives(c *cli.Context) error {
	client, err := storage.NewMinioClient(config.Load().Objects)
	if err != nil {
		return err
	}
	return listArchives(c.Context, client, c.String("prefix"), os.Stdout)
}

func runServe(c *cli.Context) error {
	cfg := config.Load()
	if port := c.String("port"); port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg)
}

func readFeed(path string) (agingrisk.Feed, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return agingrisk.Feed{}, fmt.Errorf("open feed: %w", err)
		}
		defer f.Close()
		r = f
	}

	return decodeFeed(r)
}

func decodeFeed(r io.Reader) (agingrisk.Feed, error) {
	var feed agingrisk.Feed
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return agingrisk.Feed{}, fmt.Errorf("decode feed: %w", err)
	}
	return feed, nil
}

func loadFeedObject(ctx context.Context, objects storage.ObjectStorage, key string) (agingrisk.Feed, error) {
	data, err := objects.GetObject(ctx, key)
	if err != nil {
		return agingrisk.Feed{}, err
	}
	return decodeFeed(bytes.NewReader(data))
}

func archiveResult(ctx context.Context, objects storage.ObjectStorage, key string, result *agingrisk.Result) error {
	var buf bytes.Buffer
	if err := writeResult(&buf, result, false); err != nil {
		return err
	}
	return objects.PutObject(ctx, key, buf.Bytes(), "application/json")
}

func listArchives(ctx context.Context, objects storage.ObjectStorage, prefix string, w io.Writer) error {
	infos, err := objects.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	if err := json.NewEncoder(w).Encode(infos); err != nil {
		return fmt.Errorf("encode archive listing: %w", err)
	}
	return nil
}

func writeResult(w io.Writer, result *agingrisk.Result, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
