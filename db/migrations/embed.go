// Package migrations ships the goose SQL migrations for the book2018 schema.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
