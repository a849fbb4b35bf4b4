// Package client bootstraps local persistence for the CLI: it opens the
// SQLite session database and applies the embedded goose migrations.
//
// The HTTP side lives in package api; the typed key/value slots on top of
// the database live in package store.
package client
