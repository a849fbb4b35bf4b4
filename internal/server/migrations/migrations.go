// Package migrations embeds the dev server's Postgres schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
