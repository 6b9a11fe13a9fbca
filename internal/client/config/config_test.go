package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func parse(t *testing.T, args ...string) (*pflag.FlagSet, *Config) {
	t.Helper()
	c := defaults()
	fs := pflag.NewFlagSet("authbridgectl", pflag.ContinueOnError)
	Bind(fs, c)
	require.NoError(t, fs.Parse(args))
	return fs, c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8000/api", c.APIBaseURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 30*time.Second, c.RefreshLeeway)
	assert.Equal(t, "authbridgectl.db", c.DBPath)
	assert.Equal(t, "warn", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestResolve_NoArgsGivesDefaults(t *testing.T) {
	fs, c := parse(t)
	require.NoError(t, Resolve(fs, c))
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestBind_Flags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		mutate func(c *Config)
	}{
		{
			name: "long forms",
			args: []string{"--api", "https://api.example.com/api", "--timeout", "3s", "--leeway", "1m", "--db", "/tmp/s.db", "--log-level", "debug"},
			mutate: func(c *Config) {
				c.APIBaseURL = "https://api.example.com/api"
				c.RequestTimeout = 3 * time.Second
				c.RefreshLeeway = time.Minute
				c.DBPath = "/tmp/s.db"
				c.LogLevel = "debug"
			},
		},
		{
			name: "short forms",
			args: []string{"-u", "http://localhost:9000/api", "-t", "1s", "-d", "x.db"},
			mutate: func(c *Config) {
				c.APIBaseURL = "http://localhost:9000/api"
				c.RequestTimeout = time.Second
				c.DBPath = "x.db"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, c := parse(t, tt.args...)
			require.NoError(t, Resolve(fs, c))

			want := defaults()
			tt.mutate(want)
			if diff := cmp.Diff(want, c); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"relative url", func(c *Config) { c.APIBaseURL = "/api" }, "api url"},
		{"ftp url", func(c *Config) { c.APIBaseURL = "ftp://h/api" }, "api url"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "timeout"},
		{"negative leeway", func(c *Config) { c.RefreshLeeway = -time.Second }, "leeway"},
		{"empty db", func(c *Config) { c.DBPath = "" }, "db path"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
