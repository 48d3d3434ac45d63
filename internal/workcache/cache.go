// SPDX-License-Identifier: MPL-2.0

package workcache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CacheDirEnv overrides the cache directory.
const CacheDirEnv = "KILN_CACHE_DIR"

const defaultCacheDirName = ".kiln"

// Cache binds the fingerprint functions to a Database persisted at a fixed
// path. It is owned by one build run.
type Cache struct {
	fresh  *Freshness
	db     *Database
	path   string
	logger *slog.Logger
}

// Open loads the database at path. A database that fails to parse is
// reported and replaced with an empty one; the next Flush overwrites it.
func Open(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := LoadDatabase(path)
	if err != nil {
		logger.Warn("discarding unreadable workcache database", "path", path, "error", err)
		db = NewDatabase()
	}
	return &Cache{fresh: NewFreshness(), db: db, path: path, logger: logger}
}

// New returns a Cache over an existing Database, flushed to path.
func New(db *Database, path string) *Cache {
	return &Cache{fresh: NewFreshness(), db: db, path: path, logger: slog.Default()}
}

// Path returns where the database is flushed.
func (c *Cache) Path() string { return c.path }

// Database returns the underlying Database.
func (c *Cache) Database() *Database { return c.db }

// Fresh reports whether subject still carries the fingerprint recorded for
// it within unit. A subject never recorded is not fresh.
func (c *Cache) Fresh(unit string, kind Kind, subject string) bool {
	stored, _ := c.db.Lookup(unit, Key{Kind: kind, Subject: subject})
	fresh := c.fresh.IsFresh(kind, subject, stored)
	c.logger.Debug("freshness check", "unit", unit, "kind", kind, "subject", subject, "fresh", fresh)
	return fresh
}

// Record stores the current fingerprint of subject within unit.
func (c *Cache) Record(unit string, kind Kind, subject string) error {
	fp, err := c.fresh.Record(kind, subject)
	if err != nil {
		return err
	}
	c.db.Store(unit, Key{Kind: kind, Subject: subject}, fp)
	return nil
}

// Keys returns what unit was last recorded against.
func (c *Cache) Keys(unit string) []Key { return c.db.Keys(unit) }

// Forget drops everything recorded for unit.
func (c *Cache) Forget(unit string) { c.db.Forget(unit) }

// ForgetUnder drops every unit whose artifact lies in dir.
func (c *Cache) ForgetUnder(dir string) { c.db.ForgetUnder(dir) }

// Flush saves the database if it changed.
func (c *Cache) Flush() error {
	if !c.db.Dirty() {
		return nil
	}
	if err := c.db.Save(c.path); err != nil {
		return err
	}
	c.logger.Debug("workcache flushed", "path", c.path)
	return nil
}

// DefaultDirWith resolves the cache directory: $KILN_CACHE_DIR, then
// configured, then ~/.kiln. getenv is injected for tests.
func DefaultDirWith(getenv func(string) string, configured string) (string, error) {
	if dir := getenv(CacheDirEnv); dir != "" {
		return dir, nil
	}
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, defaultCacheDirName), nil
}

// DatabasePath returns the database location inside dir.
func DatabasePath(dir string) string { return filepath.Join(dir, DatabaseFile) }
