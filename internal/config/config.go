package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

// Defaults mirror the orchestration-level health-check contract.
const (
	DefaultInterval    = 30 * time.Second
	DefaultTimeout     = 10 * time.Second
	DefaultStartPeriod = 40 * time.Second
	DefaultRetries     = 3
)

type Config struct {
	TargetURL   string        // probed endpoint, e.g. http://127.0.0.1:8000/health
	Interval    time.Duration // time between probes
	Timeout     time.Duration // max wait per probe
	StartPeriod time.Duration // grace window after start
	Retries     int           // consecutive failures before unhealthy

	Addr         string // status API bind address; empty disables the server
	LogDir       string // logs directory
	SlackWebhook string // empty disables notifications
	DatabaseURL  string // empty means in-memory history only
	HistorySize  int    // probe results kept in memory
}

func FromEnv() Config {
	cfg := Config{
		TargetURL:    os.Getenv("TARGET_URL"),
		Interval:     DefaultInterval,
		Timeout:      DefaultTimeout,
		StartPeriod:  DefaultStartPeriod,
		Retries:      DefaultRetries,
		Addr:         os.Getenv("ADDR"),
		LogDir:       "logs",
		SlackWebhook: os.Getenv("SLACK_WEBHOOK_URL"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		HistorySize:  64,
	}

	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if d, ok := envMS("PROBE_INTERVAL_MS"); ok {
		cfg.Interval = d
	}
	if d, ok := envMS("PROBE_TIMEOUT_MS"); ok {
		cfg.Timeout = d
	}
	if d, ok := envMS("START_PERIOD_MS"); ok {
		cfg.StartPeriod = d
	}
	if v := os.Getenv("RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retries = n
		}
	}
	if v := os.Getenv("HISTORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistorySize = n
		}
	}
	return cfg
}

func envMS(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// Validate reports every violation at once so a bad deployment is fixed in
// one pass. A non-nil result is fatal; the supervisor must not start.
func (c Config) Validate() error {
	var err error

	u, perr := url.Parse(c.TargetURL)
	if c.TargetURL == "" || perr != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		err = multierr.Append(err, fmt.Errorf("target url %q is not a valid http(s) url", c.TargetURL))
	}
	if c.Interval <= 0 {
		err = multierr.Append(err, fmt.Errorf("interval must be positive, got %v", c.Interval))
	}
	if c.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	if c.Interval > 0 && c.Timeout >= c.Interval {
		err = multierr.Append(err, fmt.Errorf("timeout %v must be shorter than interval %v", c.Timeout, c.Interval))
	}
	if c.StartPeriod < 0 {
		err = multierr.Append(err, fmt.Errorf("start period must not be negative, got %v", c.StartPeriod))
	}
	if c.Retries < 1 {
		err = multierr.Append(err, fmt.Errorf("retries must be at least 1, got %d", c.Retries))
	}
	return err
}
