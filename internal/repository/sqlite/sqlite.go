// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// It is the alternative to the JSON file store, selected with
// STORAGE_DRIVER=sqlite. Both backends hand out the same integer ids
// (max existing + 1) and enforce the same rules, so the HTTP layer can't tell
// them apart.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/postboard.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// Every ":memory:" connection is its own empty database, so the pool must
	// never open a second one. For a file it also serialises writers, which
	// is what makes "SELECT MAX(id)+1 then INSERT" safe inside a transaction.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := newWithConn(conn)

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// newWithConn wraps an already open pool. Tests use it with sqlmock.
func newWithConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables if they don't exist yet.
//
// Ids are plain INTEGER columns rather than AUTOINCREMENT: they are assigned
// by the repository as max+1, the same rule the JSON store uses, so a deleted
// highest id is handed out again.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id       INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email    TEXT NOT NULL,
			password TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id              INTEGER PRIMARY KEY,
			title           TEXT NOT NULL,
			content         TEXT NOT NULL,
			author_id       INTEGER NOT NULL REFERENCES users(id),
			author_username TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling back
// on any error.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// nextID returns MAX(id)+1 for table, or 1 when it's empty.
func nextID(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COALESCE(MAX(id), 0) + 1 FROM %s`, table),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sqlite: next %s id: %w", table, err)
	}
	return id, nil
}
