// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/types"
)

const (
	// RuntimeVirtual runs the command in the embedded shell interpreter.
	RuntimeVirtual Runtime = "virtual"
	// RuntimeNative runs the command with the host shell.
	RuntimeNative Runtime = "native"
)

// DefaultCommand compiles a crate with rustc. KILN_LIB_DIRS is split on
// KILN_PATH_SEP, the host path list separator.
const DefaultCommand = `set -e
case "$KILN_KIND" in
lib) set -- --crate-type dylib -C metadata="$KILN_HASH" ;;
test|bench) set -- --test ;;
*) set -- --crate-type bin ;;
esac
oldifs=$IFS
IFS=$KILN_PATH_SEP
for dir in $KILN_LIB_DIRS; do
	set -- "$@" -L "$dir"
done
IFS=$oldifs
rustc --crate-name "$KILN_NAME" "$@" -o "$KILN_OUT" "$KILN_SRC"
`

var (
	// ErrInvalidRuntime is the sentinel error wrapped by InvalidRuntimeError.
	ErrInvalidRuntime = errors.New("invalid compiler runtime")

	// ErrCompileFailed is the sentinel error wrapped by CompileError.
	ErrCompileFailed = errors.New("compile step failed")
	// ErrShellNotFound is returned by the native runtime when no sh is on PATH.
	ErrShellNotFound = errors.New("sh not found")
)

type (
	// Compiler produces the artifact described by a Request.
	Compiler interface {
		Compile(ctx context.Context, req Request) error
	}

	// Runtime selects how the compile command is executed.
	Runtime string

	// InvalidRuntimeError is returned when a Runtime is not virtual or native.
	InvalidRuntimeError struct {
		Value Runtime
	}

	// Request describes one crate to compile.
	Request struct {
		// Package is the package the crate belongs to.
		Package pkgid.ID
		// Kind is the artifact kind the crate produces.
		Kind workspace.OutputKind
		// Source is the crate's root source file.
		Source string
		// SourceDir is the package source directory, used as the working
		// directory.
		SourceDir string
		// Output is the path the artifact must be written to.
		Output string
		// Deps are the library files the crate links against.
		Deps []string
	}

	// CompileError reports a compile command that ran and exited non-zero.
	CompileError struct {
		Source   string
		ExitCode types.ExitCode
		Stderr   string
	}
)

// Error implements the error interface.
func (e *InvalidRuntimeError) Error() string {
	return fmt.Sprintf("invalid compiler runtime %q (valid: %s, %s)", e.Value, RuntimeVirtual, RuntimeNative)
}

// Unwrap returns ErrInvalidRuntime so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeError) Unwrap() error { return ErrInvalidRuntime }

// String returns the string representation of the Runtime.
func (r Runtime) String() string { return string(r) }

// Validate returns nil if the Runtime is one of the defined runtimes.
func (r Runtime) Validate() error {
	switch r {
	case RuntimeVirtual, RuntimeNative:
		return nil
	default:
		return &InvalidRuntimeError{Value: r}
	}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compiling %s exited with status %s", e.Source, e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// Unwrap returns ErrCompileFailed so callers can use errors.Is for programmatic detection.
func (e *CompileError) Unwrap() error { return ErrCompileFailed }

// OutDir returns the directory the artifact is written to.
func (r Request) OutDir() string {
	return dirOf(r.Output)
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
