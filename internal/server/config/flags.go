package config

import (
	"flag"

	"github.com/dmitrijs2005/authbridge/internal/flagx"
)

var knownFlags = []string{"-a", "-u", "-t", "-s", "-n", "-m", "-x", "-l", "-b", "-d", "-v"}

// parseFlags overlays Config with command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-u string    REST API base URL including prefix
//	-t duration  outbound request timeout
//	-s string    session secret
//	-n string    session cookie name
//	-m duration  session lifetime
//	-x bool      mark the cookie Secure
//	-l duration  access token refresh leeway
//	-b string    session backend: cookie or postgres
//	-d string    PostgreSQL DSN for the postgres backend
//	-v string    log level
//
// Unknown arguments are filtered out first so that -c and friends do not
// trip the parser.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.APIBaseURL, "u", config.APIBaseURL, "REST API base URL")
	fs.DurationVar(&config.RequestTimeout, "t", config.RequestTimeout, "outbound request timeout")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret")
	fs.StringVar(&config.CookieName, "n", config.CookieName, "session cookie name")
	fs.DurationVar(&config.SessionMaxAge, "m", config.SessionMaxAge, "session lifetime")
	fs.BoolVar(&config.CookieSecure, "x", config.CookieSecure, "secure cookie")
	fs.DurationVar(&config.RefreshLeeway, "l", config.RefreshLeeway, "access token refresh leeway")
	fs.StringVar(&config.SessionBackend, "b", config.SessionBackend, "session backend (cookie|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
