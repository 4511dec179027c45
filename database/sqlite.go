package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Collection names
const (
	DataCollection = "corporate_data"
	LogCollection  = "corporate_log"
)

// ErrCollectionMissing is returned when a required collection does not exist
var ErrCollectionMissing = errors.New("required collection missing")

// Options configures how the store is opened
type Options struct {
	Path        string
	AutoMigrate bool
}

// DB is the process-wide store handle. It is opened once at startup and
// shared by every repository; database/sql makes it safe for concurrent use.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database, optionally runs migrations and verifies
// that both collections are reachable. Callers must treat an error as fatal.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, errors.New("database path is required")
	}

	sqlDB, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err = sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY under
	// concurrent sets
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err = applyPragmas(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if opts.AutoMigrate {
		if err = RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db := &DB{DB: sqlDB}
	if err = db.VerifyCollections(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// VerifyCollections checks that the data and log collections exist
func (db *DB) VerifyCollections(ctx context.Context) error {
	for _, name := range []string{DataCollection, LogCollection} {
		var found string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
		).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrCollectionMissing, name)
		}
		if err != nil {
			return fmt.Errorf("failed to load collection %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
