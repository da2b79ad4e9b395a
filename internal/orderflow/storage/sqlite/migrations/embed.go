package migrations

import "embed"

// FS contains embedded SQLite migrations for orderflow storage.
//
//go:embed *.sql
var FS embed.FS
