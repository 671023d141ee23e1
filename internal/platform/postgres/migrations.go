package postgres

import "embed"

// MigrationsFS embeds the SQL migrations so the deployed binary can apply
// them regardless of its working directory.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the root of MigrationsFS, passed to goose alongside it.
const MigrationsDir = "migrations"
