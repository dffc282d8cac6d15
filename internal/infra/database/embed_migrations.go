package database

import "embed"

// MigrationFS holds the SQL files applied by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
