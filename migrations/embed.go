// Package migrations хранит SQL-миграции схемы, применяются goose при старте.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
