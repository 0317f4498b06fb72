package repository

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

const upSuffix = ".up.sql"

// Migrate applies every pending *.up.sql file from fsys in lexical order.
// Applied versions are recorded in schema_migrations. Returns the versions
// applied by this call.
func (r *Repository) Migrate(ctx context.Context, fsys fs.FS) ([]string, error) {
	if _, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "*"+upSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	var applied []string
	for _, name := range files {
		version := strings.TrimSuffix(name, upSuffix)

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		done := false
		err = r.inTx(ctx, func(tx pgx.Tx) error {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return nil
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return err
			}
			done = true
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", version, err)
		}
		if done {
			applied = append(applied, version)
		}
	}

	return applied, nil
}
