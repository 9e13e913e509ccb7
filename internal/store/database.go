package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"photo-cull/internal/logging"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// persistQueueSize bounds each store's pending-write queue. Enqueueing
// blocks once the queue is full, which backpressures mutation bursts
// instead of losing order.
const persistQueueSize = 256

// persistRequest is one queued backing-store write.
type persistRequest struct {
	operation string
	write     func(context.Context) error
}

// Database holds the single SQLite file backing the attribute stores.
// The ratings and categories tables are independent; nothing joins
// them and no transaction spans them.
type Database struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if absent) the attribute database at dbPath and
// ensures both tables exist. The parent directory must already exist.
func Open(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Attribute database path: %s", dbPath)

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Writes come from one process; a small pool is plenty.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ratings (
		path TEXT PRIMARY KEY,
		rating INTEGER NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS categories (
		path TEXT PRIMARY KEY,
		ids TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}
