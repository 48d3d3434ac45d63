// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrBadPath is the sentinel error wrapped by BadPathError.
	ErrBadPath = errors.New("bad path")
	// ErrArtifactNotFound is returned by callers that need an absent artifact
	// as an error, such as a dependency library that was never built.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrEmptySearchPath is returned when no workspace is configured.
	ErrEmptySearchPath = errors.New("empty search path")
)

type (
	// BadPathError reports a directory that could not be created or used.
	// It wraps ErrBadPath for errors.Is() compatibility.
	BadPathError struct {
		Path   string
		Reason string
		Err    error
	}

	// ArtifactNotFoundError names the artifact that a caller required.
	// It wraps ErrArtifactNotFound for errors.Is() compatibility.
	ArtifactNotFoundError struct {
		Name string
		Dir  string
	}
)

// Error implements the error interface for BadPathError.
func (e *BadPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad path %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("bad path %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrBadPath and the underlying cause.
func (e *BadPathError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrBadPath, e.Err}
	}
	return []error{ErrBadPath}
}

// Error implements the error interface for ArtifactNotFoundError.
func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("no library for %s in %s", e.Name, e.Dir)
}

// Unwrap returns ErrArtifactNotFound for errors.Is() compatibility.
func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }
