// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"kiln-cli/internal/testutil"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/platform"
)

func newRequest(t *testing.T) Request {
	t.Helper()

	dir := t.TempDir()
	src := filepath.Join(dir, "src", "foo")
	testutil.MustWriteFile(t, filepath.Join(src, "main.rs"), "fn main() {}")
	return Request{
		Package:   pkgid.MustParse("foo#0.2"),
		Kind:      workspace.Main,
		Source:    filepath.Join(src, "main.rs"),
		SourceDir: src,
		Output:    filepath.Join(dir, "build", "foo", "foo"),
	}
}

func TestNewShell(t *testing.T) {
	t.Parallel()

	s, err := NewShell("", "")
	if err != nil {
		t.Fatalf("NewShell() error = %v", err)
	}
	if s.Runtime != RuntimeVirtual {
		t.Errorf("Runtime = %q, want %q", s.Runtime, RuntimeVirtual)
	}
	if s.command() != DefaultCommand {
		t.Error("empty command did not fall back to DefaultCommand")
	}

	if _, err := NewShell("bogus", ""); !errors.Is(err, ErrInvalidRuntime) {
		t.Errorf("NewShell(bogus) error = %v, want ErrInvalidRuntime", err)
	}
	if _, err := NewShell(RuntimeVirtual, "if then fi ("); err == nil {
		t.Error("NewShell() accepted a command with a syntax error")
	}
}

func TestShell_VirtualWritesOutput(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	testutil.MustMkdirAll(t, req.OutDir(), 0o755)

	var stdout bytes.Buffer
	s := &Shell{
		Runtime: RuntimeVirtual,
		Command: `echo "$KILN_KIND $KILN_NAME $KILN_VERSION" > "$KILN_OUT"; echo "built $KILN_NAME"`,
		Stdout:  &stdout,
	}
	if err := s.Compile(context.Background(), req); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if got := strings.TrimSpace(testutil.MustReadFile(t, req.Output)); got != "main foo 0.2" {
		t.Errorf("artifact content = %q", got)
	}
	if strings.TrimSpace(stdout.String()) != "built foo" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestShell_LibDirsSplitOnPathSeparator(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	testutil.MustMkdirAll(t, req.OutDir(), 0o755)
	root := t.TempDir()
	req.Deps = []string{
		filepath.Join(root, "lib", "libdep-1-0.1.so"),
		filepath.Join(root, "other ws", "lib", "libx-2-0.1.so"),
	}

	if !strings.Contains(DefaultCommand, "IFS=$KILN_PATH_SEP") {
		t.Fatal("DefaultCommand does not split KILN_LIB_DIRS on KILN_PATH_SEP")
	}
	s := &Shell{
		Runtime: RuntimeVirtual,
		Command: `IFS=$KILN_PATH_SEP
for dir in $KILN_LIB_DIRS; do echo "$dir"; done > "$KILN_OUT"`,
	}
	if err := s.Compile(context.Background(), req); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	got := strings.Split(strings.TrimSpace(testutil.MustReadFile(t, req.Output)), "\n")
	want := []string{filepath.Join(root, "lib"), filepath.Join(root, "other ws", "lib")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("library directories = %q, want %q", got, want)
	}
}

func TestShell_VirtualRunsInSourceDir(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	testutil.MustMkdirAll(t, req.OutDir(), 0o755)

	s := &Shell{Runtime: RuntimeVirtual, Command: `test -f main.rs && pwd > "$KILN_OUT"`}
	if err := s.Compile(context.Background(), req); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := strings.TrimSpace(testutil.MustReadFile(t, req.Output)); got != req.SourceDir {
		t.Errorf("working directory = %q, want %q", got, req.SourceDir)
	}
}

func TestShell_VirtualNonZeroExit(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	s := &Shell{Runtime: RuntimeVirtual, Command: `echo "error: cannot find crate" >&2; exit 3`}

	err := s.Compile(context.Background(), req)
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("Compile() error = %v, want ErrCompileFailed", err)
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("errors.As(*CompileError) failed for %T", err)
	}
	if ce.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", ce.ExitCode)
	}
	if !strings.Contains(ce.Stderr, "cannot find crate") {
		t.Errorf("Stderr = %q", ce.Stderr)
	}
}

func TestShell_StderrIsForwarded(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	var stderr bytes.Buffer
	s := &Shell{Runtime: RuntimeVirtual, Command: `echo warned >&2`, Stderr: &stderr}
	if err := s.Compile(context.Background(), req); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if strings.TrimSpace(stderr.String()) != "warned" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestShell_Native(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == platform.Windows {
		t.Skip("native runtime needs a POSIX sh")
	}

	req := newRequest(t)
	testutil.MustMkdirAll(t, req.OutDir(), 0o755)

	s := &Shell{Runtime: RuntimeNative, Command: `printf '%s' "$KILN_HASH" > "$KILN_OUT"`}
	if err := s.Compile(context.Background(), req); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := testutil.MustReadFile(t, req.Output); got != req.Package.Hash() {
		t.Errorf("artifact content = %q, want %q", got, req.Package.Hash())
	}

	s.Command = "exit 7"
	var ce *CompileError
	if err := s.Compile(context.Background(), req); !errors.As(err, &ce) || ce.ExitCode != 7 {
		t.Errorf("Compile() error = %v, want exit status 7", err)
	}
}
