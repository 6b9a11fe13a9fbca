// Package migrations embeds the terminal client's SQLite schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
