// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"

	"kiln-cli/pkg/pkgid"
)

var (
	// ErrPackageNotFound is the sentinel error wrapped by PackageNotFoundError.
	ErrPackageNotFound = errors.New("package not found")
	// ErrMissingArtifact is the sentinel error wrapped by MissingArtifactError.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrStepFailed is the sentinel error wrapped by StepError.
	ErrStepFailed = errors.New("build step failed")
)

type (
	// PackageNotFoundError reports a package with no source directory in
	// the workspace.
	PackageNotFoundError struct {
		ID        pkgid.ID
		Workspace string
	}

	// MissingArtifactError reports a compile step that succeeded without
	// producing its artifact. It aborts the run.
	MissingArtifactError struct {
		ID   pkgid.ID
		Path string
	}

	// StepError reports a failed compile step for one target.
	StepError struct {
		ID     pkgid.ID
		Target string
		Err    error
	}
)

// Error implements the error interface.
func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %s not found in %s", e.ID, e.Workspace)
}

// Unwrap returns ErrPackageNotFound so callers can use errors.Is for programmatic detection.
func (e *PackageNotFoundError) Unwrap() error { return ErrPackageNotFound }

// Error implements the error interface.
func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("building %s did not produce %s", e.ID, e.Path)
}

// Unwrap returns ErrMissingArtifact so callers can use errors.Is for programmatic detection.
func (e *MissingArtifactError) Unwrap() error { return ErrMissingArtifact }

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("building %s (target %s): %v", e.ID, e.Target, e.Err)
}

// Unwrap returns ErrStepFailed and the cause.
func (e *StepError) Unwrap() []error { return []error{ErrStepFailed, e.Err} }
