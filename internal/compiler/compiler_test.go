// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"errors"
	"strings"
	"testing"
)

func TestRuntime_Validate(t *testing.T) {
	t.Parallel()

	for _, rt := range []Runtime{RuntimeVirtual, RuntimeNative} {
		if err := rt.Validate(); err != nil {
			t.Errorf("Runtime(%q).Validate() = %v", rt, err)
		}
	}

	err := Runtime("container").Validate()
	if !errors.Is(err, ErrInvalidRuntime) {
		t.Fatalf("Validate() error = %v, want ErrInvalidRuntime", err)
	}
	var invalid *InvalidRuntimeError
	if !errors.As(err, &invalid) || invalid.Value != "container" {
		t.Errorf("errors.As(*InvalidRuntimeError) = %v", err)
	}
}

func TestCompileError_Message(t *testing.T) {
	t.Parallel()

	err := &CompileError{Source: "/src/foo/lib.rs", ExitCode: 101, Stderr: "warning: x\nerror: aborting due to previous error\n"}
	msg := err.Error()
	if !strings.Contains(msg, "/src/foo/lib.rs") || !strings.Contains(msg, "101") {
		t.Errorf("Error() = %q, want source and status", msg)
	}
	if !strings.HasSuffix(msg, "error: aborting due to previous error") {
		t.Errorf("Error() = %q, want the last stderr line", msg)
	}
	if !errors.Is(err, ErrCompileFailed) {
		t.Error("CompileError does not unwrap to ErrCompileFailed")
	}

	bare := &CompileError{Source: "a", ExitCode: 1}
	if strings.HasSuffix(bare.Error(), ": ") {
		t.Errorf("Error() = %q has a dangling separator", bare.Error())
	}
}
