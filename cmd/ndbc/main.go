// Command ndbc downloads NDBC realtime standard meteorological reports and
// writes one columnar table per station.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"

	csvadapter "github.com/couchcryptid/ndbc-met-etl/internal/adapter/csv"
	httpadapter "github.com/couchcryptid/ndbc-met-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ndbc-met-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ndbc-met-etl/internal/adapter/ndbc"
	"github.com/couchcryptid/ndbc-met-etl/internal/adapter/parquet"
	"github.com/couchcryptid/ndbc-met-etl/internal/config"
	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
	"github.com/couchcryptid/ndbc-met-etl/internal/observability"
	"github.com/couchcryptid/ndbc-met-etl/internal/pipeline"
	"github.com/couchcryptid/ndbc-met-etl/internal/workspace"
)

type args struct {
	Stations     []string `arg:"positional,required" placeholder:"STATION" help:"station identifiers, e.g. 41001 FPKA2"`
	OutDir       string   `arg:"-o,--out-dir" placeholder:"DIR" help:"output directory [env: OUTPUT_DIR, default: data]"`
	Format       string   `arg:"-f,--format" placeholder:"FORMAT" help:"artifact format, parquet or csv [env: OUTPUT_FORMAT]"`
	Concurrency  int      `arg:"-j,--concurrency" help:"stations fetched at once [env: CONCURRENCY, default: 1]"`
	SkipMetadata bool     `arg:"--skip-metadata" help:"do not check the station metadata document"`
	NoProgress   bool     `arg:"--no-progress" help:"disable the progress bar"`
}

func (args) Description() string {
	return "Download NDBC realtime standard meteorological data and write one table per station."
}

func main() {
	var a args
	arg.MustParse(&a)
	os.Exit(run(a))
}

func run(a args) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	applyArgs(cfg, a)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client, err := ndbc.NewClient(ndbc.ClientConfig{
		BaseURL:         cfg.BaseURL,
		MetadataURL:     cfg.MetadataURL,
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.HTTPTimeout,
		BreakerFailures: cfg.BreakerFailures,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to create ndbc client", "error", err)
		return 1
	}

	if err := workspace.EnsureOutputDir(cfg.OutputDir, cfg.IgnoreFile, logger); err != nil {
		logger.Error("failed to prepare output dir", "dir", cfg.OutputDir, "error", err)
		return 1
	}

	batchCfg := pipeline.BatchConfig{Concurrency: cfg.Concurrency}
	if !a.SkipMetadata {
		batchCfg.Metadata = client
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaOutcomeTopic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		batchCfg.Publisher = publisher
		logger.Info("outcome publishing enabled", "topic", cfg.KafkaOutcomeTopic)
	}

	if !a.NoProgress {
		bar := newBar(len(a.Stations), "stations")
		batchCfg.OnOutcome = func(domain.Outcome) { _ = bar.Add(1) }
	}

	station := pipeline.NewStation(client, newTableWriter(cfg, logger), logger, metrics)
	batch := pipeline.NewBatch(station, batchCfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, batchObserver{batch}, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("ops server shutdown error", "error", err)
			}
		}()
	}

	summary := batch.Run(ctx, a.Stations)
	printFailures(summary)

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, prometheus.DefaultGatherer); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	return summary.ExitCode()
}

// applyArgs overrides environment settings with explicit flags.
func applyArgs(cfg *config.Config, a args) {
	if a.OutDir != "" {
		cfg.OutputDir = a.OutDir
	}
	if a.Format != "" {
		cfg.OutputFormat = a.Format
	}
	if a.Concurrency > 0 {
		cfg.Concurrency = a.Concurrency
	}
}

func newTableWriter(cfg *config.Config, logger *slog.Logger) pipeline.TableWriter {
	if cfg.OutputFormat == config.FormatCSV {
		return csvadapter.NewWriter(cfg.OutputDir, logger)
	}
	return parquet.NewWriter(cfg.OutputDir, logger)
}

func newBar(size int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(size,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func printFailures(s pipeline.Summary) {
	failed := s.Failed()
	if len(failed) == 0 && s.MetadataErr == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%d of %d stations failed\n", len(failed), len(s.Outcomes))
	for _, o := range failed {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", o.Station, o.Err)
	}
	if s.MetadataErr != nil {
		fmt.Fprintf(os.Stderr, "  %s\n", s.MetadataErr)
	}
}

// batchObserver adapts a Batch to the ops server.
type batchObserver struct {
	*pipeline.Batch
}

func (o batchObserver) Progress() httpadapter.Progress {
	return httpadapter.Progress(o.Batch.Progress())
}
