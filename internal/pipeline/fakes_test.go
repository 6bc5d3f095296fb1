package pipeline_test

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

const (
	testHeader = "#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE"
	testUnits  = "#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft"
	testRow    = "24 01 15 00 00 270 12.3 15.1 MM MM MM MM 1013.2 15.0 16.2 MM MM MM MM"
)

var validReport = testHeader + "\n" + testUnits + "\n" + testRow + "\n"

// fakeFetcher serves canned reports keyed by station. Stations without an
// entry get a 404.
type fakeFetcher struct {
	mu      sync.Mutex
	reports map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) FetchReport(_ context.Context, station string) (domain.RawReport, error) {
	f.mu.Lock()
	f.calls = append(f.calls, station)
	f.mu.Unlock()

	if err, ok := f.errs[station]; ok {
		return domain.RawReport{Station: station}, err
	}
	body, ok := f.reports[station]
	if !ok {
		return domain.RawReport{Station: station, Status: http.StatusNotFound}, nil
	}
	return domain.RawReport{Station: station, Status: http.StatusOK, Body: []byte(body)}, nil
}

type fakeWriter struct {
	mu     sync.Mutex
	err    error
	tables map[string][]domain.Table
}

func (w *fakeWriter) WriteTable(_ context.Context, station string, t domain.Table) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tables == nil {
		w.tables = map[string][]domain.Table{}
	}
	w.tables[station] = append(w.tables[station], t)
	return "data/" + station + ".parquet", nil
}

type fakeMetadata struct {
	n   int
	err error
}

func (m fakeMetadata) CheckMetadata(_ context.Context) (int, error) { return m.n, m.err }

type fakePublisher struct {
	published []domain.Outcome
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, outcomes []domain.Outcome) error {
	p.published = append(p.published, outcomes...)
	return p.err
}

var errConnReset = errors.New("read: connection reset by peer")
