// SPDX-License-Identifier: MPL-2.0

package workcache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// domainKey is a 32-byte BLAKE3 key: the ASCII domain name, zero-padded.
// Separate keys keep a file and a binary with identical bytes from sharing a
// fingerprint.
type domainKey [32]byte

var (
	fileDomainKey = domainKey{
		'k', 'i', 'l', 'n', '.', 'w', 'o', 'r', 'k', 'c', 'a', 'c', 'h', 'e', '.',
		'f', 'i', 'l', 'e',
	}

	binaryDomainKey = domainKey{
		'k', 'i', 'l', 'n', '.', 'w', 'o', 'r', 'k', 'c', 'a', 'c', 'h', 'e', '.',
		'b', 'i', 'n', 'a', 'r', 'y',
	}
)

// digestFunc fingerprints the file at path.
type digestFunc func(path string) (string, error)

// digestWithDate returns a digestFunc hashing a file's contents followed by
// its modification time in nanoseconds.
func digestWithDate(key domainKey) digestFunc {
	return func(path string) (string, error) {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", path)
		}

		// NewKeyed only fails for keys that are not 32 bytes.
		hasher, err := blake3.NewKeyed(key[:])
		if err != nil {
			panic("workcache: BLAKE3 keyed hash initialization failed: " + err.Error())
		}
		if _, err := io.Copy(hasher, f); err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		fmt.Fprintf(hasher, "\x00mtime:%d", info.ModTime().UnixNano())

		return hex.EncodeToString(hasher.Sum(nil)), nil
	}
}
