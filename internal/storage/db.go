// Package storage provides the persistence layer for creatorbook: a badger
// key/value store holding one JSON document per named key, and the
// repositories that own each document.
package storage

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"
)

const (
	// AppName is the application name used for data directories.
	AppName = "creatorbook"

	// DefaultMaxValueSize is the per-key write quota (5 MiB).
	DefaultMaxValueSize = 5 * 1024 * 1024
)

// DB wraps a Badger database connection.
type DB struct {
	db           *badger.DB
	path         string
	maxValueSize int
	version      atomic.Uint64
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
	// MaxValueSize caps the serialized size of a single key. Zero uses
	// DefaultMaxValueSize.
	MaxValueSize int
}

// DefaultPath returns the default database path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	path := opts.Path

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
		path = ""
	} else {
		if err := os.MkdirAll(opts.Path, 0o700); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	maxSize := opts.MaxValueSize
	if maxSize <= 0 {
		maxSize = DefaultMaxValueSize
	}

	return &DB{db: db, path: path, maxValueSize: maxSize}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database directory, empty for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
