// SPDX-License-Identifier: MPL-2.0

package pkgid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultRevision is how an unversioned package is rendered in artifact
// filenames and versioned source directory names.
const DefaultRevision = "0.1"

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

// revisionRegex accepts dotted numerics ("0.3", "1.2.10") and tag-like tokens
// ("v1.2", "v0.4.1+build.7"). Hex digests such as "9f3a2" never match.
var revisionRegex = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)(?:\+([0-9A-Za-z.]+))?$`)

type (
	// Version is either NoVersion (the zero value) or an exact revision.
	// NoVersion acts as a wildcard when matching artifact filenames.
	Version struct {
		rev string
	}

	// InvalidVersionError is returned when a revision token does not follow
	// the version grammar. It wraps ErrInvalidVersion for errors.Is().
	InvalidVersionError struct {
		Value string
	}
)

// NoVersion is the unversioned package version.
var NoVersion = Version{}

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: expected dotted numerics or a tag like v1.2", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// ExactRevision returns the version for rev, or an error if rev is not a
// valid revision token.
func ExactRevision(rev string) (Version, error) {
	if !revisionRegex.MatchString(rev) {
		return NoVersion, &InvalidVersionError{Value: rev}
	}
	return Version{rev: rev}, nil
}

// TryParseVersion parses s as a revision token and reports whether it is one.
func TryParseVersion(s string) (Version, bool) {
	v, err := ExactRevision(s)
	if err != nil {
		return NoVersion, false
	}
	return v, true
}

// ParseVersion is the permissive form of TryParseVersion: anything that is
// not a revision token yields NoVersion.
func ParseVersion(s string) Version {
	v, _ := TryParseVersion(s)
	return v
}

// SplitVersion splits s at the last occurrence of sep and parses the tail as
// a version. It reports false when sep is absent or the tail is not a
// revision token.
func SplitVersion(s string, sep byte) (string, Version, bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return "", NoVersion, false
	}
	v, ok := TryParseVersion(s[i+1:])
	if !ok {
		return "", NoVersion, false
	}
	return s[:i], v, true
}

// IsNone reports whether v is NoVersion.
func (v Version) IsNone() bool { return v.rev == "" }

// Revision returns the revision token as written, or "" for NoVersion.
func (v Version) Revision() string { return v.rev }

// String renders the version for use in filenames. NoVersion renders as
// DefaultRevision.
func (v Version) String() string {
	if v.IsNone() {
		return DefaultRevision
	}
	return v.rev
}

// Equal reports whether v and o denote the same version. A leading 'v' on
// tag-like revisions is not significant.
func (v Version) Equal(o Version) bool {
	return v.canonical() == o.canonical()
}

// Matches reports whether a version found on disk satisfies v. NoVersion
// matches anything.
func (v Version) Matches(found Version) bool {
	return v.IsNone() || v.Equal(found)
}

// Compare orders versions by their numeric components, left to right.
// NoVersion sorts before every exact revision; a missing component counts
// as lower than any present one. Build metadata breaks ties lexically.
func (v Version) Compare(o Version) int {
	switch {
	case v.IsNone() && o.IsNone():
		return 0
	case v.IsNone():
		return -1
	case o.IsNone():
		return 1
	}

	vn, vm := v.components()
	on, om := o.components()
	for i := 0; i < len(vn) && i < len(on); i++ {
		if vn[i] != on[i] {
			if vn[i] < on[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(vn) < len(on):
		return -1
	case len(vn) > len(on):
		return 1
	}
	return strings.Compare(vm, om)
}

func (v Version) canonical() string {
	return strings.TrimPrefix(v.rev, "v")
}

// components splits the revision into its numeric parts and build metadata.
func (v Version) components() ([]uint64, string) {
	m := revisionRegex.FindStringSubmatch(v.rev)
	if m == nil {
		return nil, ""
	}
	parts := strings.Split(m[1], ".")
	nums := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			// Components longer than uint64 still order by length.
			n = ^uint64(0)
		}
		nums = append(nums, n)
	}
	return nums, m[2]
}
