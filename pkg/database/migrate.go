package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one ordered schema change.
type Migration struct {
	ID          string     `db:"id"`
	Description string     `db:"description"`
	SQL         string     `db:"-"`
	AppliedAt   *time.Time `db:"applied_at"`
}

// Migrator applies embedded SQL migrations and records them in schema_migrations.
type Migrator struct {
	db     *sqlx.DB
	files  fs.FS
	logger *zap.Logger
}

// NewMigrator constructs a migrator over the embedded migration files.
func NewMigrator(db *sqlx.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, files: migrationFiles, logger: logger}
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    id VARCHAR(255) PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Up applies every pending migration, each in its own transaction, and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}
	migrations, err := m.load()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, migration := range migrations {
		if _, ok := applied[migration.ID]; ok {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return count, err
		}
		m.logger.Info("migration applied", zap.String("id", migration.ID), zap.String("description", migration.Description))
		count++
	}
	return count, nil
}

// Status lists every known migration with its applied timestamp when present.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	migrations, err := m.load()
	if err != nil {
		return nil, err
	}
	for i := range migrations {
		if at, ok := applied[migrations[i].ID]; ok {
			ts := at
			migrations[i].AppliedAt = &ts
		}
	}
	return migrations, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", migration.ID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("execute migration %s: %w", migration.ID, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (id, description) VALUES ($1, $2)`, migration.ID, migration.Description); err != nil {
		return fmt.Errorf("record migration %s: %w", migration.ID, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", migration.ID, err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]time.Time, error) {
	var rows []Migration
	if err := m.db.SelectContext(ctx, &rows, `SELECT id, description, applied_at FROM schema_migrations ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	applied := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		var at time.Time
		if row.AppliedAt != nil {
			at = *row.AppliedAt
		}
		applied[row.ID] = at
	}
	return applied, nil
}

func (m *Migrator) load() ([]Migration, error) {
	entries, err := fs.Glob(m.files, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}
	sort.Strings(entries)
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		name := path.Base(entry)
		parts := strings.SplitN(strings.TrimSuffix(name, ".sql"), "_", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid migration filename %s", name)
		}
		content, err := fs.ReadFile(m.files, entry)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			ID:          parts[0],
			Description: strings.ReplaceAll(parts[1], "_", " "),
			SQL:         string(content),
		})
	}
	return migrations, nil
}
