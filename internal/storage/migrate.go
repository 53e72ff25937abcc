package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const schemaMigrationsDDL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		name VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)
`

// RunMigrations applies every .sql file not yet recorded in
// schema_migrations, in lexical order, each in its own transaction.
// An empty dir applies the migrations compiled into the binary.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	source, err := migrationSource(dir)
	if err != nil {
		return err
	}

	names, err := listMigrations(source)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, schemaMigrationsDDL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	done, err := appliedMigrations(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := 0
	for _, name := range names {
		if done[name] {
			slog.Debug("migration already applied", "migration", name)
			continue
		}

		script, err := fs.ReadFile(source, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		slog.Info("applying migration", "migration", name)
		if err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name)
			return err
		}); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		applied++
	}

	slog.Info("migrations complete", "applied", applied, "total", len(names))
	return nil
}

func migrationSource(dir string) (fs.FS, error) {
	if dir == "" {
		sub, err := fs.Sub(embeddedMigrations, "migrations")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		return sub, nil
	}

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	return os.DirFS(dir), nil
}

// listMigrations returns the .sql files of source in lexical order
func listMigrations(source fs.FS) ([]string, error) {
	names, err := fs.Glob(source, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	out := names[:0]
	for _, n := range names {
		if info, err := fs.Stat(source, n); err == nil && !info.IsDir() {
			out = append(out, path.Base(n))
		}
	}
	return out, nil
}

func appliedMigrations(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(names))
	for _, n := range names {
		done[n] = true
	}
	return done, nil
}
