// Package migrations embeds the versioned SQL migrations for the
// Postgres vector store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
