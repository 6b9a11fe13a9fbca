package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagConfig   = "config"
	FlagAPI      = "api"
	FlagTimeout  = "timeout"
	FlagLeeway   = "leeway"
	FlagDB       = "db"
	FlagLogLevel = "log-level"
)

// Bind registers the global flags on fs, writing into c. c should already
// hold its defaults since they become the flag defaults.
//
//	-c, --config string      YAML or JSON config file
//	-u, --api string         REST API base URL
//	-t, --timeout duration   request timeout
//	-l, --leeway duration    access token refresh leeway
//	-d, --db string          SQLite file for the saved session
//	-v, --log-level string   log level
func Bind(fs *pflag.FlagSet, c *Config) {
	fs.StringP(FlagConfig, "c", "", "path to a YAML or JSON config file")
	fs.StringVarP(&c.APIBaseURL, FlagAPI, "u", c.APIBaseURL, "REST API base URL")
	fs.DurationVarP(&c.RequestTimeout, FlagTimeout, "t", c.RequestTimeout, "request timeout")
	fs.DurationVarP(&c.RefreshLeeway, FlagLeeway, "l", c.RefreshLeeway, "access token refresh leeway")
	fs.StringVarP(&c.DBPath, FlagDB, "d", c.DBPath, "SQLite file for the saved session")
	fs.StringVarP(&c.LogLevel, FlagLogLevel, "v", c.LogLevel, "log level (debug|info|warn|error)")
}

// Resolve overlays the config file named by --config onto c, then validates.
// Flags given explicitly on the command line keep precedence over the file.
func Resolve(fs *pflag.FlagSet, c *Config) error {
	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return err
	}
	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return err
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *pflag.Flag) { explicit[f.Name] = true })
		fc.apply(c, explicit)
	}
	return c.Validate()
}
