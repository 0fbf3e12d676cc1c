package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

type execFunc func(ctx context.Context, query string) error

// applyMigrations runs every up migration of the dialect in file name order.
// Each migration is written to be idempotent, so no version table is kept.
func applyMigrations(ctx context.Context, dialect string, exec execFunc) error {
	entries, err := fs.Glob(migrationFiles, "migrations/"+dialect+"/*.up.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		query, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err = exec(ctx, string(query)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
