// SPDX-License-Identifier: MPL-2.0

package pkgsrc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is the name of the optional package manifest.
const ManifestFile = "kiln.toml"

// ErrInvalidManifest is the sentinel error wrapped by ManifestError.
var ErrInvalidManifest = errors.New("invalid package manifest")

type (
	// Manifest is the decoded kiln.toml.
	Manifest struct {
		Dependencies []string    `toml:"dependencies"`
		Crates       []CrateSpec `toml:"crate"`
	}

	// CrateSpec declares one crate in a manifest.
	CrateSpec struct {
		Kind   string `toml:"kind"`
		Source string `toml:"source"`
	}

	// ManifestError reports a kiln.toml that could not be read or decoded.
	ManifestError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns ErrInvalidManifest and the cause.
func (e *ManifestError) Unwrap() []error { return []error{ErrInvalidManifest, e.Err} }

// ReadManifest decodes the manifest at path. It returns (nil, nil) if the file
// does not exist. Unknown keys are rejected.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ManifestError{Path: path, Err: err}
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, &ManifestError{Path: path, Err: fmt.Errorf("line %d, column %d: %w", row, col, err)}
		}
		return nil, &ManifestError{Path: path, Err: err}
	}
	return &m, nil
}
