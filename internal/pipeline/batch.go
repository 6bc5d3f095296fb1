package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
	"github.com/couchcryptid/ndbc-met-etl/internal/observability"
)

// MetadataChecker confirms the station metadata document is live and well
// formed, returning the number of stations that report meteorological data.
type MetadataChecker interface {
	CheckMetadata(ctx context.Context) (int, error)
}

// OutcomePublisher forwards finished outcomes to an external sink.
type OutcomePublisher interface {
	Publish(ctx context.Context, outcomes []domain.Outcome) error
}

// BatchConfig tunes a batch run. Nil collaborators are skipped.
type BatchConfig struct {
	// Concurrency is the number of stations processed at once. Values
	// below 1 run stations sequentially.
	Concurrency int

	Metadata  MetadataChecker
	Publisher OutcomePublisher

	// OnOutcome is called once per finished station, in completion order.
	// Calls are serialized.
	OnOutcome func(domain.Outcome)
}

// Progress counts stations of the current run.
type Progress struct {
	Requested int
	Processed int
	Succeeded int
	Failed    int
}

// Summary is the result of a batch run. Outcomes are in input order.
type Summary struct {
	Outcomes    []domain.Outcome
	MetadataErr error
}

// Succeeded returns the number of stations whose table was written.
func (s Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed returns the failed outcomes in input order.
func (s Summary) Failed() []domain.Outcome {
	var failed []domain.Outcome
	for _, o := range s.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// ExitCode is non-zero only when every requested station failed. The
// metadata check never affects it.
func (s Summary) ExitCode() int {
	if len(s.Outcomes) > 0 && s.Succeeded() == 0 {
		return 1
	}
	return 0
}

// Batch drives the station pipeline over a list of station identifiers.
type Batch struct {
	station *Station
	cfg     BatchConfig
	logger  *slog.Logger
	metrics *observability.Metrics

	ready     atomic.Bool
	requested atomic.Int64
	processed atomic.Int64
	succeeded atomic.Int64
}

// NewBatch creates a batch driver around a station pipeline.
func NewBatch(station *Station, cfg BatchConfig, logger *slog.Logger, metrics *observability.Metrics) *Batch {
	return &Batch{station: station, cfg: cfg, logger: logger, metrics: metrics}
}

// CheckReadiness returns nil once at least one station has finished.
func (b *Batch) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("no station processed yet")
	}
	return nil
}

// Progress returns a snapshot of the running batch.
func (b *Batch) Progress() Progress {
	processed := int(b.processed.Load())
	succeeded := int(b.succeeded.Load())
	return Progress{
		Requested: int(b.requested.Load()),
		Processed: processed,
		Succeeded: succeeded,
		Failed:    processed - succeeded,
	}
}

// Run processes every station in input order. Duplicate identifiers are
// processed once per occurrence. A failed station never stops the batch.
// The metadata check runs alongside the station loop and does not block it.
func (b *Batch) Run(ctx context.Context, stations []string) Summary {
	b.logger.Info("batch started", "stations", len(stations), "concurrency", b.concurrency())
	b.metrics.BatchRunning.Set(1)
	defer b.metrics.BatchRunning.Set(0)

	b.requested.Store(int64(len(stations)))
	b.processed.Store(0)
	b.succeeded.Store(0)

	metaDone := make(chan error, 1)
	if b.cfg.Metadata != nil {
		go func() { metaDone <- b.checkMetadata(ctx) }()
	} else {
		metaDone <- nil
	}

	summary := Summary{Outcomes: b.processAll(ctx, stations)}
	summary.MetadataErr = <-metaDone

	if b.cfg.Publisher != nil {
		if err := b.cfg.Publisher.Publish(ctx, summary.Outcomes); err != nil {
			b.logger.Warn("publish outcomes failed", "error", err)
		}
	}

	b.logSummary(summary)
	return summary
}

func (b *Batch) processAll(ctx context.Context, stations []string) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(stations))
	var mu sync.Mutex

	record := func(i int, o domain.Outcome) {
		outcomes[i] = o
		b.processed.Add(1)
		if o.OK() {
			b.succeeded.Add(1)
		}
		b.ready.Store(true)
		if b.cfg.OnOutcome != nil {
			mu.Lock()
			b.cfg.OnOutcome(o)
			mu.Unlock()
		}
	}

	n := b.concurrency()
	if n == 1 {
		for i, id := range stations {
			record(i, b.station.Process(ctx, id))
		}
		return outcomes
	}

	sem := make(chan struct{}, n)
	var wg sync.WaitGroup
	for i, id := range stations {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			record(i, b.station.Process(ctx, id))
		}()
	}
	wg.Wait()
	return outcomes
}

func (b *Batch) checkMetadata(ctx context.Context) error {
	metStations, err := b.cfg.Metadata.CheckMetadata(ctx)
	if err != nil {
		b.metrics.MetadataCheckOK.Set(0)
		serr := domain.Fail("", domain.MetadataCheckFailed, err)
		b.logger.Warn("metadata check failed", "kind", serr.Kind.String(), "error", err)
		return serr
	}
	b.metrics.MetadataCheckOK.Set(1)
	b.logger.Info("metadata check passed", "met_stations", metStations)
	return nil
}

func (b *Batch) logSummary(s Summary) {
	failed := s.Failed()
	for _, o := range failed {
		b.logger.Warn("station not ingested", "station", o.Station, "kind", o.Kind().String(), "error", o.Err)
	}
	b.logger.Info("batch finished",
		"stations", len(s.Outcomes),
		"succeeded", s.Succeeded(),
		"failed", len(failed),
		"metadata_ok", s.MetadataErr == nil,
	)
}

func (b *Batch) concurrency() int {
	if b.cfg.Concurrency < 1 {
		return 1
	}
	return b.cfg.Concurrency
}
