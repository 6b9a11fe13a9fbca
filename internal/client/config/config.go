package config

import (
	"errors"
	"net/url"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/logging"
)

// Config holds runtime settings for authbridgectl.
//
// Fields:
//   - APIBaseURL: REST API base URL including its prefix.
//   - RequestTimeout: per-request timeout for API calls.
//   - RefreshLeeway: how early before expiry the access token is renewed.
//   - DBPath: SQLite file holding the saved session.
//   - LogLevel: debug, info, warn or error; logs go to stderr.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	RefreshLeeway  time.Duration
	DBPath         string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.RequestTimeout = 10 * time.Second
	c.RefreshLeeway = 30 * time.Second
	c.DBPath = "authbridgectl.db"
	c.LogLevel = "warn"
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, errors.New("api url must be an absolute http(s) url"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.RefreshLeeway < 0 {
		errs = append(errs, errors.New("refresh leeway must not be negative"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
