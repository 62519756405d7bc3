package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx, so read helpers can run
// inside or outside a transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Store handles students, attendance records and users in SQLite
type Store struct {
	DB     *sqlx.DB
	Logger *log.Logger
}

// NewStore creates a Store over an open database
func NewStore(conn *sqlx.DB, logger *log.Logger) *Store {
	return &Store{DB: conn, Logger: logger}
}

// OpenSQLite opens the database file at path (":memory:" for a private
// in-memory database) with foreign keys enforced.
func OpenSQLite(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000", path)
	conn, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// One connection: SQLite has a single writer anyway, and an in-memory
	// database only lives as long as its connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite %s: %w", path, err)
	}
	return conn, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS student (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		nama  TEXT NOT NULL,
		kelas TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL REFERENCES student(id) ON DELETE CASCADE,
		tanggal    TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('H', 'A', 'I', 'S')),
		UNIQUE (student_id, tanggal)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_tanggal ON attendance (tanggal)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// inTx runs fn in a transaction. Any error from fn rolls everything back.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.DB.Close()
}
