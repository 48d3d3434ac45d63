// SPDX-License-Identifier: MPL-2.0

package workcache

import (
	"fmt"
	"log/slog"
)

// Freshness maps each Kind to its fingerprint function. It is built once and
// only read afterwards, so one value may be shared freely.
type Freshness struct {
	digests map[Kind]digestFunc
}

// NewFreshness returns the Freshness for every Kind: file and binary
// fingerprints both cover content and modification time.
func NewFreshness() *Freshness {
	return &Freshness{
		digests: map[Kind]digestFunc{
			KindFile:   digestWithDate(fileDomainKey),
			KindBinary: digestWithDate(binaryDomainKey),
		},
	}
}

// IsFresh reports whether the file at path still has the stored fingerprint.
// Missing or unreadable files are never fresh. It panics if kind has no
// registered fingerprint function.
func (f *Freshness) IsFresh(kind Kind, path, stored string) bool {
	digest := f.lookup(kind)
	if stored == "" {
		return false
	}
	current, err := digest(path)
	if err != nil {
		slog.Debug("fingerprint unavailable", "kind", kind, "path", path, "error", err)
		return false
	}
	return current == stored
}

// Record returns the current fingerprint of the file at path. It panics if
// kind has no registered fingerprint function.
func (f *Freshness) Record(kind Kind, path string) (string, error) {
	digest := f.lookup(kind)
	fp, err := digest(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s %s: %w", kind, path, err)
	}
	return fp, nil
}

func (f *Freshness) lookup(kind Kind) digestFunc {
	digest, ok := f.digests[kind]
	if !ok {
		panic(fmt.Sprintf("workcache: no freshness function registered for %v", kind))
	}
	return digest
}
