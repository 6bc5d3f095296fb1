package pipeline

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
	"github.com/couchcryptid/ndbc-met-etl/internal/observability"
)

// ReportFetcher retrieves the realtime report for one station. A not-found
// report is returned with a 404 status and a nil error.
type ReportFetcher interface {
	FetchReport(ctx context.Context, station string) (domain.RawReport, error)
}

// TableWriter persists a station table and returns the artifact path.
type TableWriter interface {
	WriteTable(ctx context.Context, station string, t domain.Table) (string, error)
}

// Stage is a step of the per-station state progression.
type Stage int

const (
	Fetching Stage = iota
	Validating
	HeaderDetection
	Tokenizing
	Assembling
	Writing
	Done
)

func (s Stage) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Validating:
		return "validating"
	case HeaderDetection:
		return "header_detection"
	case Tokenizing:
		return "tokenizing"
	case Assembling:
		return "assembling"
	case Writing:
		return "writing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Station runs the fetch, parse, and write steps for a single station.
// It holds no per-station state and is safe for concurrent use.
type Station struct {
	fetcher ReportFetcher
	writer  TableWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStation creates a per-station pipeline.
func NewStation(f ReportFetcher, w TableWriter, logger *slog.Logger, metrics *observability.Metrics) *Station {
	return &Station{fetcher: f, writer: w, logger: logger, metrics: metrics}
}

// Process runs the pipeline for one station. Failures are returned in the
// outcome, never as a panic or an error, so the caller can move on.
func (s *Station) Process(ctx context.Context, station string) domain.Outcome {
	start := clock.Now()
	out := s.run(ctx, station)
	out.Station = station
	out.FinishedAt = clock.Now()

	s.metrics.StationDuration.Observe(out.FinishedAt.Sub(start).Seconds())
	s.metrics.StationsProcessed.WithLabelValues(out.Status()).Inc()

	if out.OK() {
		s.metrics.RowsWritten.Add(float64(out.Rows))
		s.logger.Info("station written", "station", station, "path", out.Path, "rows", out.Rows, "skipped_lines", out.Skipped)
		return out
	}
	s.logger.Warn("station failed", "station", station, "kind", out.Kind().String(), "error", out.Err)
	return out
}

func (s *Station) run(ctx context.Context, station string) domain.Outcome {
	s.enter(station, Fetching)
	report, err := s.fetcher.FetchReport(ctx, station)
	if err != nil {
		return failed(station, domain.TransportError, err)
	}
	if report.Status == http.StatusNotFound {
		return failed(station, domain.Unavailable, nil)
	}

	s.enter(station, Validating)
	lines := domain.SplitLines(report.Body)
	if domain.CountDataLines(lines) == 0 {
		return failed(station, domain.EmptyData, nil)
	}

	s.enter(station, HeaderDetection)
	header, next, err := domain.LocateHeader(lines)
	if err != nil {
		return failed(station, domain.HeaderNotFound, err)
	}

	s.enter(station, Tokenizing)
	records, skipped := domain.ParseRecords(lines, next, header)
	for _, sl := range skipped {
		s.logger.Warn("skipping report line", "station", station, "line", sl.Number, "text", sl.Text, "error", sl.Err)
	}
	s.metrics.LinesSkipped.Add(float64(len(skipped)))
	if len(records) == 0 {
		out := failed(station, domain.NoStandardMetRows, nil)
		out.Skipped = len(skipped)
		return out
	}

	s.enter(station, Assembling)
	table := domain.AssembleTable(records)

	s.enter(station, Writing)
	path, err := s.writer.WriteTable(ctx, station, table)
	if err != nil {
		out := failed(station, domain.WriteError, err)
		out.Skipped = len(skipped)
		return out
	}

	s.enter(station, Done)
	return domain.Outcome{Path: path, Rows: table.Len(), Skipped: len(skipped)}
}

func (s *Station) enter(station string, stage Stage) {
	s.logger.Debug("station stage", "station", station, "stage", stage.String())
}

func failed(station string, kind domain.FailureKind, err error) domain.Outcome {
	return domain.Outcome{Err: domain.Fail(station, kind, err)}
}
