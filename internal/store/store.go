// Package store owns the local sqlite file: schema versioning and migration,
// observation reads and writes, retention cleanup and exports.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Timestamps are stored timezone-naive at second precision.
const timestampLayout = "2006-01-02T15:04:05"

type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger

	busyTimeout time.Duration
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// Open opens (creating if needed) the store file, applies the connection
// pragmas and runs the migration chain up to the current schema version.
func Open(path string, opts ...Option) (*Store, error) {
	s, err := open(path, false, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing store without migrating it. Pragmas that
// fail on a read-only handle are logged and skipped.
func OpenReadOnly(path string, opts ...Option) (*Store, error) {
	return open(path, true, opts...)
}

func open(path string, readOnly bool, opts ...Option) (*Store, error) {
	if path == "" {
		path = "data/skin_prices.db"
	}
	s := &Store{
		path:        path,
		log:         slog.Default(),
		busyTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := "file:" + path
	if readOnly {
		dsn += "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", ErrStorageUnavailable, err)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d;", s.busyTimeout.Milliseconds()),
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA cache_size=10000;",
		"PRAGMA temp_store=MEMORY;",
		"PRAGMA mmap_size=268435456;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			if readOnly {
				// Some pragmas cannot be set on a read-only handle.
				s.log.Warn("pragma skipped on read-only handle", "pragma", pragma, "err", err)
				continue
			}
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w: %w", pragma, ErrStorageUnavailable, err)
		}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w: %w", ErrStorageUnavailable, err)
	}

	s.db = db
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the store file.
func (s *Store) Path() string { return s.path }

// backup writes a consistent copy of the store next to it, named
// <db>.<suffix>_<timestamp>.backup. A fresh store with no file yet is a no-op.
func (s *Store) backup(suffix string) (string, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return "", nil
	}
	backupPath := fmt.Sprintf("%s.%s_%s.backup", s.path, suffix, time.Now().Format("20060102_150405"))
	if _, err := s.db.Exec("VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("create backup %s: %w", backupPath, err)
	}
	s.log.Info("backup created", "path", backupPath)
	return backupPath, nil
}
