// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS contains the migration files applied on startup and by the test suite.
//
//go:embed *.sql
var FS embed.FS
