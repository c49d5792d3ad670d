// Package migration applies the embedded schema migrations.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"seamless/pkg/db"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrDirty means a previous migration failed halfway.
var ErrDirty = errors.New("database is in dirty state, manual intervention required")

type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

type Runner struct {
	db  *sql.DB
	src fs.FS
}

func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db, src: migrationFS}
}

// Run applies every migration newer than the current version.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureSchemaTable(ctx); err != nil {
		return fmt.Errorf("failed to create schema table: %w", err)
	}

	migrations, err := r.load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	current, dirty, err := r.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return ErrDirty
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Down reverts the newest applied migration.
func (r *Runner) Down(ctx context.Context) error {
	current, _, err := r.Version(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}
	migrations, err := r.load()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Version != current {
			continue
		}
		if m.DownSQL == "" {
			return fmt.Errorf("migration %d has no down script", m.Version)
		}
		return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.Version)
			return err
		})
	}
	return fmt.Errorf("migration %d not found", current)
}

func (r *Runner) ensureSchemaTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT FALSE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *Runner) load() ([]Migration, error) {
	entries, err := fs.ReadDir(r.src, "migrations")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		version, mname, direction, err := parseFilename(name)
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(r.src, "migrations/"+name)
		if err != nil {
			return nil, err
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: mname}
			byVersion[version] = m
		}
		if direction == "up" {
			m.UpSQL = string(content)
		} else {
			m.DownSQL = string(content)
		}
	}

	var migrations []Migration
	for _, m := range byVersion {
		if m.UpSQL != "" {
			migrations = append(migrations, *m)
		}
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseFilename splits "0001_name.up.sql" into its parts.
func parseFilename(filename string) (version int, name, direction string, err error) {
	parts := strings.Split(strings.TrimSuffix(filename, ".sql"), ".")
	if len(parts) != 2 {
		return 0, "", "", fmt.Errorf("invalid migration filename format")
	}

	direction = parts[1]
	if direction != "up" && direction != "down" {
		return 0, "", "", fmt.Errorf("invalid direction: %s", direction)
	}

	num, rest, ok := strings.Cut(parts[0], "_")
	if !ok || rest == "" {
		return 0, "", "", fmt.Errorf("invalid migration name format")
	}
	version, err = strconv.Atoi(num)
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid version number: %w", err)
	}
	return version, rest, direction, nil
}

// Version returns the newest applied migration and whether it is dirty.
func (r *Runner) Version(ctx context.Context) (version int, dirty bool, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT version, dirty
		FROM schema_migrations
		ORDER BY version DESC
		LIMIT 1
	`)

	err = row.Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, TRUE)`, m.Version); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE schema_migrations SET dirty = FALSE WHERE version = ?`, m.Version)
		return err
	})
}

// Force clears the dirty flag on version.
func (r *Runner) Force(ctx context.Context, version int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE schema_migrations SET dirty = FALSE WHERE version = ?`, version)
	return err
}
