// Package config loads runtime configuration for authbridgectl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML or JSON file given with -c/--config.
//  3. Flags given on the command line, which override the file.
//
// # File schema
//
// Durations can be strings like "10s" or integer nanoseconds:
//
//	api_base_url: http://127.0.0.1:8000/api
//	request_timeout: 10s
//	refresh_leeway: 30s
//	db_path: authbridgectl.db
//	log_level: warn
package config
