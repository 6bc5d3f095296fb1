package ndbc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

// ErrCircuitOpen is returned when repeated transport failures have opened the
// circuit breaker; remaining stations fail fast instead of waiting on timeouts.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the NDBC client.
type ClientConfig struct {
	// BaseURL is the NDBC site root; reports live under /data/realtime2/.
	BaseURL string

	// MetadataURL is the station metadata XML document.
	MetadataURL string

	UserAgent string

	// Timeout is the per-request transport timeout.
	Timeout time.Duration

	// BreakerFailures is the number of consecutive transport failures that
	// open the circuit. Zero disables the breaker. An open breaker fails the
	// remaining stations without fetching them, so it is opt-in.
	BreakerFailures uint32

	Logger *slog.Logger
}

// Client fetches NDBC realtime reports and station metadata.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	metadataURL string
	userAgent   string
	breaker     *gobreaker.CircuitBreaker[domain.RawReport]
	logger      *slog.Logger
}

// NewClient creates an NDBC client. It fails only on invalid configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.MetadataURL); err != nil {
		return nil, fmt.Errorf("invalid metadata url: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %s", cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		metadataURL: cfg.MetadataURL,
		userAgent:   cfg.UserAgent,
		logger:      logger,
	}

	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker[domain.RawReport](gobreaker.Settings{
			Name:        "ndbc-realtime",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return c, nil
}

// ReportURL returns the realtime standard meteorological report URL for a station.
func (c *Client) ReportURL(station string) string {
	return fmt.Sprintf("%s/data/realtime2/%s.txt", c.baseURL, url.PathEscape(station))
}

// FetchReport downloads the realtime report for station. A not-found response
// is returned as a RawReport with Status 404 and a nil error; transport
// failures and other non-success statuses are returned as errors.
func (c *Client) FetchReport(ctx context.Context, station string) (domain.RawReport, error) {
	u := c.ReportURL(station)
	c.logger.Info("downloading realtime data", "station", station, "url", u)

	fetch := func() (domain.RawReport, error) {
		status, body, err := c.get(ctx, u)
		if err != nil {
			return domain.RawReport{}, err
		}
		report := domain.RawReport{Station: station, Status: status, Body: body}
		if status == http.StatusNotFound {
			return report, nil
		}
		if status < 200 || status >= 300 {
			return report, fmt.Errorf("unexpected status %d", status)
		}
		return report, nil
	}

	if c.breaker == nil {
		return fetch()
	}

	report, err := c.breaker.Execute(fetch)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.RawReport{Station: station}, fmt.Errorf("fetch %s: %w", station, ErrCircuitOpen)
	}
	return report, err
}

// FetchMetadata downloads the station metadata XML document.
func (c *Client) FetchMetadata(ctx context.Context) ([]byte, error) {
	c.logger.Info("downloading station metadata", "url", c.metadataURL)

	status, body, err := c.get(ctx, c.metadataURL)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("metadata: unexpected status %d", status)
	}
	return body, nil
}

// CheckMetadata fetches the station metadata document and confirms it is
// well formed. It returns the number of stations reporting meteorological data.
func (c *Client) CheckMetadata(ctx context.Context) (int, error) {
	body, err := c.FetchMetadata(ctx)
	if err != nil {
		return 0, err
	}
	md, err := ParseMetadata(body)
	if err != nil {
		return 0, err
	}
	c.logger.Info("station metadata ok", "stations", md.Stations, "met_stations", md.MetStations)
	return md.MetStations, nil
}

func (c *Client) get(ctx context.Context, u string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}
