package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/authbridge/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// either "10s" strings or integer nanoseconds. Zero values leave the
// current setting alone.
type FileConfig struct {
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RefreshLeeway  timex.Duration `json:"refresh_leeway" yaml:"refresh_leeway"`
	DBPath         string         `json:"db_path" yaml:"db_path"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
}

// readFile decodes path as YAML when it ends in .yaml or .yml, and as JSON
// otherwise.
func readFile(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, fc)
	default:
		err = json.Unmarshal(raw, fc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// apply copies non-zero file values into c, skipping fields whose flag was
// set explicitly.
func (fc *FileConfig) apply(c *Config, explicit map[string]bool) {
	if fc.APIBaseURL != "" && !explicit[FlagAPI] {
		c.APIBaseURL = fc.APIBaseURL
	}
	if fc.RequestTimeout.Duration != 0 && !explicit[FlagTimeout] {
		c.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshLeeway.Duration != 0 && !explicit[FlagLeeway] {
		c.RefreshLeeway = fc.RefreshLeeway.Duration
	}
	if fc.DBPath != "" && !explicit[FlagDB] {
		c.DBPath = fc.DBPath
	}
	if fc.LogLevel != "" && !explicit[FlagLogLevel] {
		c.LogLevel = fc.LogLevel
	}
}
