package ndbc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ndbc-met-etl/internal/adapter/ndbc"
)

const testReport = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft
24 01 15 00 00 270 12.3 15.1 MM MM MM MM 1013.2 15.0 16.2 MM MM MM MM
`

func newClient(t *testing.T, srv *httptest.Server, breakerFailures uint32) *ndbc.Client {
	t.Helper()
	c, err := ndbc.NewClient(ndbc.ClientConfig{
		BaseURL:         srv.URL,
		MetadataURL:     srv.URL + "/metadata/stationmetadata.xml",
		UserAgent:       "ndbc-test",
		Timeout:         2 * time.Second,
		BreakerFailures: breakerFailures,
	})
	require.NoError(t, err)
	return c
}

func TestClient_FetchReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/realtime2/41001.txt", r.URL.Path)
		assert.Equal(t, "ndbc-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(testReport))
	}))
	defer srv.Close()

	report, err := newClient(t, srv, 0).FetchReport(context.Background(), "41001")
	require.NoError(t, err)

	assert.Equal(t, "41001", report.Station)
	assert.Equal(t, http.StatusOK, report.Status)
	assert.Equal(t, testReport, string(report.Body))
}

func TestClient_FetchReport_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	report, err := newClient(t, srv, 0).FetchReport(context.Background(), "NOPE1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, report.Status)
}

func TestClient_FetchReport_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t, srv, 0).FetchReport(context.Background(), "41001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClient_FetchReport_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newClient(t, srv, 0)
	srv.Close()

	_, err := c.FetchReport(context.Background(), "41001")
	require.Error(t, err)
}

func TestClient_FetchReport_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv, 2)
	for range 2 {
		_, err := c.FetchReport(context.Background(), "41001")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ndbc.ErrCircuitOpen))
	}

	_, err := c.FetchReport(context.Background(), "41002")
	require.ErrorIs(t, err, ndbc.ErrCircuitOpen)
	assert.Equal(t, 1, strings.Count(err.Error(), "circuit breaker is open"), err.Error())
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_FetchReport_NoBreakerByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(t, srv, 0)
	for range 10 {
		_, err := c.FetchReport(context.Background(), "41001")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ndbc.ErrCircuitOpen)
	}
	assert.Equal(t, int32(10), calls.Load())
}

func TestClient_FetchReport_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newClient(t, srv, 1)
	for range 3 {
		report, err := c.FetchReport(context.Background(), "NOPE1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, report.Status)
	}
}

func TestClient_FetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata/stationmetadata.xml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<stations><station id="41001"/></stations>`))
	}))
	defer srv.Close()

	body, err := newClient(t, srv, 0).FetchMetadata(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(body), `<station id="41001"/>`)
}

func TestClient_FetchMetadata_Status(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newClient(t, srv, 0).FetchMetadata(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := ndbc.NewClient(ndbc.ClientConfig{BaseURL: "::bad", MetadataURL: "http://x/m.xml", Timeout: time.Second})
	require.Error(t, err)

	_, err = ndbc.NewClient(ndbc.ClientConfig{BaseURL: "http://x", MetadataURL: "http://x/m.xml"})
	require.Error(t, err)
}

func TestClient_ReportURL(t *testing.T) {
	c, err := ndbc.NewClient(ndbc.ClientConfig{BaseURL: "https://www.ndbc.noaa.gov", MetadataURL: "https://www.ndbc.noaa.gov/m.xml", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "https://www.ndbc.noaa.gov/data/realtime2/FPKA2.txt", c.ReportURL("FPKA2"))
}

func TestClient_CheckMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<stations><station id="41001"><history met="y"/></station><station id="B"><history met="n"/></station></stations>`))
	}))
	defer srv.Close()

	n, err := newClient(t, srv, 0).CheckMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_CheckMetadata_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>maintenance</body></html>`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv, 0).CheckMetadata(context.Background())
	require.Error(t, err)
}
