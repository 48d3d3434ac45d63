// SPDX-License-Identifier: MPL-2.0

package pkgid

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// VersionSeparator separates the package path from a requested version in
// the textual identifier form "<path>#<version>".
const VersionSeparator = "#"

// ErrMalformedIdentifier is the sentinel error wrapped by MalformedIdentifierError.
var ErrMalformedIdentifier = errors.New("malformed package identifier")

// crateDomainKey is the BLAKE3 key for crate hashes, the ASCII domain name
// zero-padded to 32 bytes.
var crateDomainKey = [32]byte{
	'k', 'i', 'l', 'n', '.', 'p', 'k', 'g', 'i', 'd', '.', 'c', 'r', 'a', 't', 'e',
}

type (
	// RemotePath is the package path as the user wrote it.
	RemotePath string

	// LocalPath is the normalized on-disk form of a RemotePath.
	LocalPath string

	// ID identifies a package within a workspace.
	ID struct {
		// Remote is the identifier path as requested.
		Remote RemotePath
		// Local is Remote with '-' replaced by '_' in the final stem.
		Local LocalPath
		// ShortName is the file stem of Local; artifacts are named after it.
		ShortName string
		// Version is the requested version, NoVersion if none.
		Version Version
	}

	// MalformedIdentifierError is returned for empty or absolute package paths.
	// It wraps ErrMalformedIdentifier for errors.Is() compatibility.
	MalformedIdentifierError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface for MalformedIdentifierError.
func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed package identifier %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrMalformedIdentifier for errors.Is() compatibility.
func (e *MalformedIdentifierError) Unwrap() error { return ErrMalformedIdentifier }

// String returns the string representation of the RemotePath.
func (p RemotePath) String() string { return string(p) }

// String returns the string representation of the LocalPath.
func (p LocalPath) String() string { return string(p) }

// FilePath returns the LocalPath in the host's path syntax.
func (p LocalPath) FilePath() string { return filepath.FromSlash(string(p)) }

// Normalize replaces every '-' with '_' in the file stem of the final path
// segment. Parent segments and the extension are left alone, so the
// operation is idempotent.
func Normalize(remote RemotePath) (LocalPath, error) {
	s := string(remote)
	if err := validatePath(s); err != nil {
		return "", err
	}

	dir, base := splitLast(s)
	stem, ext := splitStem(base)
	replaced := strings.ReplaceAll(stem, "-", "_")
	if replaced == stem {
		return LocalPath(s), nil
	}
	return LocalPath(dir + replaced + ext), nil
}

// New builds an ID for the given remote path and version.
func New(remote RemotePath, version Version) (ID, error) {
	local, err := Normalize(remote)
	if err != nil {
		return ID{}, err
	}
	_, base := splitLast(string(local))
	short, _ := splitStem(base)
	if short == "" {
		return ID{}, &MalformedIdentifierError{Value: string(remote), Reason: "empty package name"}
	}
	return ID{
		Remote:    remote,
		Local:     local,
		ShortName: short,
		Version:   version,
	}, nil
}

// Parse parses the textual form "<path>[#<version>]". A version that does not
// follow the version grammar is treated as NoVersion.
func Parse(s string) (ID, error) {
	path, rev, hasVersion := strings.Cut(s, VersionSeparator)
	version := NoVersion
	if hasVersion {
		version = ParseVersion(rev)
	}
	return New(RemotePath(path), version)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders the identifier as "<local-path>-<version>".
func (id ID) String() string {
	return string(id.Local) + "-" + id.Version.String()
}

// Hash returns the crate hash the compiler embeds in library filenames. It
// depends only on the normalized path, short name and version, so spellings
// that normalize alike share one hash.
func (id ID) Hash() string {
	hasher, err := blake3.NewKeyed(crateDomainKey[:])
	if err != nil {
		panic("pkgid: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	fmt.Fprintf(hasher, "%s-%s-%s", id.Local, id.ShortName, id.Version)
	sum := hasher.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// validatePath rejects paths that cannot name a package inside a workspace.
func validatePath(s string) error {
	switch {
	case s == "":
		return &MalformedIdentifierError{Value: s, Reason: "0-length package path"}
	case strings.HasPrefix(s, "/"), strings.HasPrefix(s, `\`), filepath.IsAbs(s):
		return &MalformedIdentifierError{Value: s, Reason: "absolute package path"}
	case strings.HasSuffix(s, "/"):
		return &MalformedIdentifierError{Value: s, Reason: "trailing path separator"}
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return &MalformedIdentifierError{Value: s, Reason: "path escapes the workspace"}
		}
	}
	return nil
}

// splitLast returns everything up to and including the last '/', and the
// final segment.
func splitLast(s string) (string, string) {
	i := strings.LastIndexByte(s, '/')
	return s[:i+1], s[i+1:]
}

// splitStem splits a file name into stem and extension. A leading dot does
// not start an extension.
func splitStem(base string) (string, string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return base, ""
	}
	return base[:i], base[i:]
}
