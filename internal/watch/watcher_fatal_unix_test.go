// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestBrokenWatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{syscall.ENOSPC, true},
		{syscall.EMFILE, true},
		{syscall.ENFILE, true},
		{fmt.Errorf("inotify: %w", syscall.ENOSPC), true},
		{syscall.EPERM, false},
		{syscall.EACCES, false},
		{fmt.Errorf("something went wrong"), false},
	}

	for _, tt := range tests {
		if got := brokenWatcher(tt.err); got != tt.want {
			t.Errorf("brokenWatcher(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
