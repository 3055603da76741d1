// Package sqliteutil opens SQLite databases with the pragmas quill relies on.
package sqliteutil

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// OpenDB opens a SQLite database with recommended pragmas for concurrency and
// foreign key support. The connection pool is limited to a single connection
// so writes are serialized.
func OpenDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create database directory %q: %w", dir, err)
	}

	// busy_timeout(5000): wait up to 5 seconds when the database is locked
	// journal_mode(WAL): write-ahead logging for concurrent readers
	// foreign_keys(1): required for ON DELETE CASCADE on session messages
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrapOpenError(path, err)
	}

	// SQLite allows one writer at a time; a single pooled connection avoids
	// "database is locked" errors from concurrent writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Ping forces the file to actually be created/opened.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrapOpenError(path, err)
	}

	return db, nil
}

func wrapOpenError(path string, err error) error {
	if !isCantOpenError(err) {
		return err
	}

	dir := filepath.Dir(path)
	info, statErr := os.Stat(dir)
	switch {
	case os.IsNotExist(statErr):
		return fmt.Errorf("cannot create database at %q: directory %q does not exist", path, dir)
	case statErr != nil:
		return fmt.Errorf("cannot create database at %q: %w", path, statErr)
	case !info.IsDir():
		return fmt.Errorf("cannot create database at %q: %q is not a directory", path, dir)
	}
	return fmt.Errorf("cannot create database at %q: permission denied or file cannot be created in %q (original error: %v)", path, dir, err)
}

// isCantOpenError checks if the error is a SQLite CANTOPEN error (code 14).
func isCantOpenError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CANTOPEN
	}
	return false
}
