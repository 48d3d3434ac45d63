// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiln-cli/internal/build"
	"kiln-cli/internal/compiler"
	"kiln-cli/internal/testutil"
	"kiln-cli/internal/workcache"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/platform"
)

// touchCompiler writes an empty artifact without running anything.
type touchCompiler struct{}

func (touchCompiler) Compile(_ context.Context, req compiler.Request) error {
	return os.WriteFile(req.Output, nil, 0o755)
}

func newWorkspace(b *testing.B) workspace.Workspace {
	b.Helper()
	ws, err := workspace.New(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	return ws
}

// BenchmarkIdentifierParse benchmarks parsing and normalizing identifiers.
func BenchmarkIdentifierParse(b *testing.B) {
	inputs := []string{
		"foo",
		"github.com/someone/my-tool#1.2.10",
		"example.org/a/b/c/deeply-nested-package#v0.4.1+build.7",
	}

	for b.Loop() {
		for _, in := range inputs {
			if _, err := pkgid.Parse(in); err != nil {
				b.Fatalf("Parse(%q) failed: %v", in, err)
			}
		}
	}
}

// BenchmarkLibraryMatch benchmarks finding one library among many similar
// names in an installed lib/ directory.
func BenchmarkLibraryMatch(b *testing.B) {
	ws := newWorkspace(b)
	for i := range 200 {
		name := fmt.Sprintf("pkg%03d-%08x-%d.%d", i, i*7919, i%5, i%3)
		testutil.MustWriteFile(b, filepath.Join(ws.LibDir(), platform.Host.DLLFilename(name)), "")
	}
	testutil.MustWriteFile(b, filepath.Join(ws.LibDir(), platform.Host.DLLFilename("target-9f3a2b7c-1.2")), "")
	version := pkgid.ParseVersion("1.2")

	for b.Loop() {
		if _, ok, err := ws.InstalledLibrary("target", version); err != nil || !ok {
			b.Fatalf("InstalledLibrary() = (%v, %v)", ok, err)
		}
	}
}

// BenchmarkFingerprint benchmarks fingerprinting a 1 MiB source file.
func BenchmarkFingerprint(b *testing.B) {
	path := filepath.Join(b.TempDir(), "big.rs")
	testutil.MustWriteFile(b, path, strings.Repeat("fn f() {}\n", 1<<20/10))
	fresh := workcache.NewFreshness()

	b.SetBytes(1 << 20)
	for b.Loop() {
		if _, err := fresh.Record(workcache.KindFile, path); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDatabaseRoundTrip benchmarks saving and loading a database with
// 500 work units.
func BenchmarkDatabaseRoundTrip(b *testing.B) {
	db := workcache.NewDatabase()
	digest := strings.Repeat("ab", 32)
	for i := range 500 {
		unit := fmt.Sprintf("/ws/build/pkg%03d/pkg%03d", i, i)
		db.Store(unit, workcache.Key{Kind: workcache.KindFile, Subject: fmt.Sprintf("/ws/src/pkg%03d/main.rs", i)}, digest)
		db.Store(unit, workcache.Key{Kind: workcache.KindBinary, Subject: unit}, digest)
	}
	path := workcache.DatabasePath(b.TempDir())

	for b.Loop() {
		if err := db.Save(path); err != nil {
			b.Fatalf("Save failed: %v", err)
		}
		if _, err := workcache.LoadDatabase(path); err != nil {
			b.Fatalf("LoadDatabase failed: %v", err)
		}
	}
}

// BenchmarkNoopBuild benchmarks a build where every crate is up to date,
// the common case of repeated runs.
func BenchmarkNoopBuild(b *testing.B) {
	ws := newWorkspace(b)
	for _, name := range []string{"lib.rs", "main.rs", "test.rs"} {
		testutil.MustWriteFile(b, filepath.Join(ws.SrcDir(), "bench", "pkg", name), "fn f() {}")
	}
	for i := range 20 {
		testutil.MustWriteFile(b, filepath.Join(ws.SrcDir(), "bench", "pkg", "mod", fmt.Sprintf("m%02d.rs", i)), "fn g() {}")
	}
	builder := &build.Builder{
		Cache:    workcache.Open(workcache.DatabasePath(b.TempDir()), nil),
		Compiler: touchCompiler{},
	}
	id := pkgid.MustParse("bench/pkg")
	if _, err := builder.Build(b.Context(), ws, id); err != nil {
		b.Fatalf("initial Build failed: %v", err)
	}

	for b.Loop() {
		res, err := builder.Build(b.Context(), ws, id)
		if err != nil {
			b.Fatalf("Build failed: %v", err)
		}
		if res.Compiled() != 0 {
			b.Fatalf("no-op build compiled %d crates", res.Compiled())
		}
	}
}

// BenchmarkVirtualCompile benchmarks one compile step in the embedded shell.
func BenchmarkVirtualCompile(b *testing.B) {
	ws := newWorkspace(b)
	srcDir := filepath.Join(ws.SrcDir(), "foo")
	testutil.MustWriteFile(b, filepath.Join(srcDir, "main.rs"), "fn main() {}")
	id := pkgid.MustParse("foo")
	out, err := ws.OutputPath(id, workspace.Main, workspace.Build)
	if err != nil {
		b.Fatal(err)
	}

	shell, err := compiler.NewShell(compiler.RuntimeVirtual, `: > "$KILN_OUT"`)
	if err != nil {
		b.Fatal(err)
	}
	req := compiler.Request{
		Package:   id,
		Kind:      workspace.Main,
		Source:    filepath.Join(srcDir, "main.rs"),
		SourceDir: srcDir,
		Output:    out,
	}

	for b.Loop() {
		if err := shell.Compile(b.Context(), req); err != nil {
			b.Fatalf("Compile failed: %v", err)
		}
	}
}
