package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL     = "https://www.ndbc.noaa.gov"
	defaultMetadataURL = "https://www.ndbc.noaa.gov/metadata/stationmetadata.xml"
	defaultUserAgent   = "ndbc-met-etl/0.1"
	defaultHTTPTimeout = 30 * time.Second
)

// Output formats.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	BaseURL     string
	MetadataURL string
	UserAgent   string
	HTTPTimeout time.Duration

	OutputDir    string
	OutputFormat string
	IgnoreFile   string

	Concurrency int

	// BreakerFailures opens the fetch circuit breaker after this many
	// consecutive transport failures. Zero, the default, disables it.
	BreakerFailures uint32

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional ops surfaces; empty disables them.
	MetricsAddr     string
	MetricsTextfile string

	// Outcome publishing is enabled when KafkaBrokers is non-empty.
	KafkaBrokers      []string
	KafkaOutcomeTopic string
}

// Load reads configuration from environment variables (optionally .env),
// applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	httpTimeout, err := parseDuration("HTTP_TIMEOUT", defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	concurrency, err := parsePositiveInt("CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}

	breakerFailures, err := parseNonNegativeInt("BREAKER_FAILURES", 0)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:     strings.TrimRight(sharedcfg.EnvOrDefault("NDBC_BASE_URL", defaultBaseURL), "/"),
		MetadataURL: sharedcfg.EnvOrDefault("NDBC_METADATA_URL", defaultMetadataURL),
		UserAgent:   sharedcfg.EnvOrDefault("USER_AGENT", defaultUserAgent),
		HTTPTimeout: httpTimeout,

		OutputDir:    sharedcfg.EnvOrDefault("OUTPUT_DIR", "data"),
		OutputFormat: strings.ToLower(sharedcfg.EnvOrDefault("OUTPUT_FORMAT", FormatParquet)),
		IgnoreFile:   sharedcfg.EnvOrDefault("IGNORE_FILE", ".gitignore"),

		Concurrency:     concurrency,
		BreakerFailures: uint32(breakerFailures),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,

		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaBrokers:      sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaOutcomeTopic: sharedcfg.EnvOrDefault("KAFKA_OUTCOME_TOPIC", "ndbc-station-outcomes"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that may also be overridden from the command line.
func (c *Config) Validate() error {
	if err := validateURL("NDBC_BASE_URL", c.BaseURL); err != nil {
		return err
	}
	if err := validateURL("NDBC_METADATA_URL", c.MetadataURL); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR must not be empty")
	}
	if c.OutputFormat != FormatParquet && c.OutputFormat != FormatCSV {
		return fmt.Errorf("invalid OUTPUT_FORMAT %q: want %s or %s", c.OutputFormat, FormatParquet, FormatCSV)
	}
	if c.Concurrency < 1 {
		return errors.New("CONCURRENCY must be at least 1")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaOutcomeTopic == "" {
		return errors.New("KAFKA_OUTCOME_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q", key, raw)
	}
	return nil
}
