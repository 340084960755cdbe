// Package database owns the bbolt file that backs the persisted LSH tables.
package database

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-sod/clamp/internal/logging"
	bolt "go.etcd.io/bbolt"
)

type Config struct {
	FileName string        `envconfig:"CLAMP_INDEX_FILE" default:"lsh.index" toml:"file_name"`
	Timeout  time.Duration `envconfig:"CLAMP_INDEX_LOCK_TIMEOUT" default:"1s" toml:"timeout"`
	NoSync   bool          `envconfig:"CLAMP_INDEX_NO_SYNC" default:"true" toml:"no_sync"`
}

// PathIn returns the index file location inside dir.
func (c Config) PathIn(dir string) string {
	return filepath.Join(dir, c.FileName)
}

type DB struct {
	DB *bolt.DB
}

// Open creates or opens the index file at path. The file is transient, so
// fsync is skipped unless the config asks for it.
func Open(ctx context.Context, path string, cfg Config) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Debugf("opening index file %s", path)

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: cfg.Timeout, NoSync: cfg.NoSync})
	if err != nil {
		return nil, fmt.Errorf("open index file %s: %w", path, err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) Path() string {
	return db.DB.Path()
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Debugf("closing index file %s", db.DB.Path())

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}

	return nil
}
