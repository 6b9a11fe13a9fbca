package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/authbridge/internal/flagx"
	"github.com/dmitrijs2005/authbridge/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// either "10s" strings or integer nanoseconds. Zero values leave the
// current setting alone.
type FileConfig struct {
	EndpointAddr   string         `json:"endpoint_addr" yaml:"endpoint_addr"`
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SessionSecret  string         `json:"session_secret" yaml:"session_secret"`
	CookieName     string         `json:"cookie_name" yaml:"cookie_name"`
	SessionMaxAge  timex.Duration `json:"session_max_age" yaml:"session_max_age"`
	CookieSecure   *bool          `json:"cookie_secure" yaml:"cookie_secure"`
	RefreshLeeway  timex.Duration `json:"refresh_leeway" yaml:"refresh_leeway"`
	SessionBackend string         `json:"session_backend" yaml:"session_backend"`
	DatabaseDSN    string         `json:"database_dsn" yaml:"database_dsn"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON. A missing or
// malformed file panics.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, c)
	default:
		err = json.Unmarshal(raw, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.APIBaseURL, c.APIBaseURL)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.CookieName, c.CookieName)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)

	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.SessionMaxAge.Duration != 0 {
		config.SessionMaxAge = c.SessionMaxAge.Duration
	}
	if c.RefreshLeeway.Duration != 0 {
		config.RefreshLeeway = c.RefreshLeeway.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
