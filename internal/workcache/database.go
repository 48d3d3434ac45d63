// SPDX-License-Identifier: MPL-2.0

package workcache

import (
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"kiln-cli/pkg/cueutil"
)

const (
	// DatabaseFile is the name of the persisted database in the cache dir.
	DatabaseFile = "kiln_db.cue"

	databaseVersion = "1"
)

//go:embed database_schema.cue
var databaseSchema []byte

type (
	// Key identifies one fingerprint within a work unit.
	Key struct {
		Kind    Kind
		Subject string
	}

	// Database holds the last-known fingerprints of every work unit. A unit
	// is named by the artifact it produces.
	Database struct {
		mu    sync.Mutex
		units map[string]map[Key]string
		dirty bool
	}

	databaseDocument struct {
		Version string                       `json:"version"`
		Units   map[string]map[string]string `json:"units"`
	}
)

// String renders the key as "<kind>:<subject>".
func (k Key) String() string { return k.Kind.String() + ":" + k.Subject }

// parseKey is the inverse of Key.String.
func parseKey(s string) (Key, error) {
	tag, subject, ok := strings.Cut(s, ":")
	if !ok || subject == "" {
		return Key{}, fmt.Errorf("malformed fingerprint key %q", s)
	}
	kind, err := ParseKind(tag)
	if err != nil {
		return Key{}, err
	}
	return Key{Kind: kind, Subject: subject}, nil
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{units: make(map[string]map[Key]string)}
}

// LoadDatabase reads the database at path. A missing file yields an empty
// Database.
func LoadDatabase(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDatabase(), nil
		}
		return nil, fmt.Errorf("failed to read workcache database: %w", err)
	}

	res, err := cueutil.ParseAndDecode[databaseDocument](databaseSchema, data, "#Database", cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}

	db := NewDatabase()
	for unit, entries := range res.Value.Units {
		m := make(map[Key]string, len(entries))
		for raw, digest := range entries {
			key, err := parseKey(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: units[%q]: %w", path, unit, err)
			}
			m[key] = digest
		}
		db.units[unit] = m
	}
	return db, nil
}

// Lookup returns the stored fingerprint for key within unit.
func (d *Database) Lookup(unit string, key Key) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fp, ok := d.units[unit][key]
	return fp, ok
}

// Store records the fingerprint for key within unit.
func (d *Database) Store(unit string, key Key, fingerprint string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.units[unit]
	if !ok {
		m = make(map[Key]string)
		d.units[unit] = m
	}
	if m[key] != fingerprint {
		m[key] = fingerprint
		d.dirty = true
	}
}

// Keys returns the keys recorded for unit, sorted by kind then subject.
func (d *Database) Keys(unit string) []Key {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.SortedFunc(maps.Keys(d.units[unit]), compareKeys)
}

func compareKeys(a, b Key) int {
	if a.Kind != b.Kind {
		return cmp.Compare(a.Kind, b.Kind)
	}
	return strings.Compare(a.Subject, b.Subject)
}

// Forget drops every fingerprint of unit.
func (d *Database) Forget(unit string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.units[unit]; ok {
		delete(d.units, unit)
		d.dirty = true
	}
}

// ForgetUnder drops every unit whose name is dir or lies below it.
func (d *Database) ForgetUnder(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir = filepath.Clean(dir)
	prefix := dir + string(filepath.Separator)
	for unit := range d.units {
		if unit == dir || strings.HasPrefix(unit, prefix) {
			delete(d.units, unit)
			d.dirty = true
		}
	}
}

// Units returns the unit names in sorted order.
func (d *Database) Units() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Sorted(maps.Keys(d.units))
}

// Dirty reports whether the database changed since it was loaded or saved.
func (d *Database) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dirty
}

// Save writes the database to path atomically.
func (d *Database) Save(path string) error {
	d.mu.Lock()
	content := d.toCUE()
	d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("failed to write workcache database: %w", err)
	}

	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
	return nil
}

// toCUE renders the database with units and keys sorted so unchanged
// databases serialize identically. Callers hold d.mu.
func (d *Database) toCUE() string {
	var sb strings.Builder

	sb.WriteString("// kiln_db.cue - workcache fingerprints, regenerated on every build\n")
	sb.WriteString("// DO NOT EDIT MANUALLY\n\n")
	fmt.Fprintf(&sb, "version: %q\n\n", databaseVersion)

	if len(d.units) == 0 {
		sb.WriteString("units: {}\n")
		return sb.String()
	}

	sb.WriteString("units: {\n")
	for _, unit := range slices.Sorted(maps.Keys(d.units)) {
		entries := d.units[unit]
		keys := make([]string, 0, len(entries))
		byString := make(map[string]string, len(entries))
		for k, fp := range entries {
			keys = append(keys, k.String())
			byString[k.String()] = fp
		}
		slices.Sort(keys)

		fmt.Fprintf(&sb, "\t%q: {\n", unit)
		for _, k := range keys {
			fmt.Fprintf(&sb, "\t\t%q: %q\n", k, byString[k])
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}

// writeFileAtomic writes data to a temp file in path's directory, syncs it
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return err
	}
	return nil
}
