// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitOK is returned when every requested package was processed.
	ExitOK ExitCode = 0
	// ExitFailure is returned for recoverable failures such as a bad
	// identifier or a failed compiler step.
	ExitFailure ExitCode = 1
	// ExitConfig is returned for fatal configuration errors.
	ExitConfig ExitCode = 2
	// ExitAborted is returned when a run was aborted because an invariant
	// did not hold (a compiler step reported success without an artifact).
	ExitAborted ExitCode = 3
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code in the range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is() compatibility.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true for ExitOK.
func (c ExitCode) IsSuccess() bool { return c == ExitOK }

// String returns the decimal form of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
