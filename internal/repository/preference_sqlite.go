package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLitePreferenceRepository keeps preferences in a local database file,
// the desktop counterpart of browser local storage.
type SQLitePreferenceRepository struct {
	db *sql.DB
}

var _ PreferenceRepository = (*SQLitePreferenceRepository)(nil)

// NewSQLitePreferenceRepository opens (creating if needed) the database at dbPath.
func NewSQLitePreferenceRepository(dbPath string) (*SQLitePreferenceRepository, error) {
	normalizedPath := normalizeSQLitePath(dbPath)
	if err := ensureSQLiteDir(normalizedPath); err != nil {
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_mode=rwc&_busy_timeout=5000", normalizedPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &SQLitePreferenceRepository{db: db}
	if err := repo.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close database after schema error: %w", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return repo, nil
}

func ensureSQLiteDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func normalizeSQLitePath(dbPath string) string {
	if dbPath == "" {
		return dbPath
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return dbPath
	}
	return abs
}

func (r *SQLitePreferenceRepository) initSchema() error {
	_, err := r.db.Exec(`
        CREATE TABLE IF NOT EXISTS view_preferences (
            scope      TEXT NOT NULL,
            key        TEXT NOT NULL,
            value      TEXT NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (scope, key)
        )`)
	return err
}

func (r *SQLitePreferenceRepository) Get(ctx context.Context, scope, key string) (string, bool, error) {
	const query = `SELECT value FROM view_preferences WHERE scope = ? AND key = ?`

	var value string
	if err := r.db.QueryRowContext(ctx, query, scope, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *SQLitePreferenceRepository) Set(ctx context.Context, scope, key, value string) error {
	const query = `
        INSERT INTO view_preferences (scope, key, value, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, scope, key, value)
	return err
}

func (r *SQLitePreferenceRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the database handle.
func (r *SQLitePreferenceRepository) Close() error {
	return r.db.Close()
}
