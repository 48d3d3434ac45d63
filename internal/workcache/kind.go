// SPDX-License-Identifier: MPL-2.0

package workcache

import (
	"errors"
	"fmt"
)

const (
	// KindFile is a source file input.
	KindFile Kind = iota + 1
	// KindBinary is a compiled artifact: a crate's output or a dependency
	// library it links against.
	KindBinary
)

// ErrUnknownKind is returned when a persisted tag names no Kind.
var ErrUnknownKind = errors.New("unknown freshness kind")

// Kind tags what a fingerprint describes. The set is closed; the persisted
// database stores the tag string.
type Kind int

// String returns the persisted tag of the Kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind returns the Kind for a persisted tag.
func ParseKind(tag string) (Kind, error) {
	switch tag {
	case "file":
		return KindFile, nil
	case "binary":
		return KindBinary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
}
