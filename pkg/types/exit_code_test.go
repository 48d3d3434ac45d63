// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "ok", value: ExitOK, wantValid: true},
		{name: "aborted", value: ExitAborted, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Fatalf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if !tt.wantValid && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitOK.IsSuccess() {
		t.Error("ExitOK.IsSuccess() = false")
	}
	for _, c := range []ExitCode{ExitFailure, ExitConfig, ExitAborted} {
		if c.IsSuccess() {
			t.Errorf("ExitCode(%d).IsSuccess() = true", c)
		}
	}
	if ExitAborted.String() != "3" {
		t.Errorf("String() = %q, want 3", ExitAborted.String())
	}
}
