package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type defaultColumn struct {
	name  string
	color string
}

var defaultColumns = []defaultColumn{
	{"Backlog", "#6c757d"},
	{"In Progress", "#0078d4"},
	{"Review", "#f39c12"},
	{"Done", "#28a745"},
}

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New opens a SQLite database, creating its directory when needed.
func New(path string) (*DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases
	// from splitting into one database per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// dsn enables foreign keys on every connection the pool opens.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// Migrate applies the schema and seeds the default board columns once.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM columns").Scan(&count); err != nil {
		return fmt.Errorf("failed to count columns: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, col := range defaultColumns {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO columns (name, position, color) VALUES (?, ?, ?)",
			col.name, i+1, col.color,
		); err != nil {
			return fmt.Errorf("failed to seed columns: %w", err)
		}
	}
	return nil
}

// Available reports whether the database is reachable.
func (db *DB) Available(ctx context.Context) bool {
	return db != nil && db.PingContext(ctx) == nil
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
