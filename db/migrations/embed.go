// Package dbmigrations exposes embedded SQL migrations for shadowbench binaries.
package dbmigrations

import "embed"

// Files contains the embedded SQL migrations bundled into shadowbench binaries.
//
//go:embed *.sql
var Files embed.FS
