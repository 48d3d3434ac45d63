// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kiln-cli/internal/testutil"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/platform"
)

func TestInstall_CopiesLibraryAndMainOnly(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	writePackage(t, ws, "foo", map[string]string{"main.rs": "", "lib.rs": "", "test.rs": "", "bench.rs": ""})
	b := newBuilder(t, &recordingCompiler{})
	id := pkgid.MustParse("foo#0.3")

	res, err := b.Install(context.Background(), ws, id)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(res.Installed) != 2 {
		t.Fatalf("Installed = %v, want library and executable", res.Installed)
	}

	lib := filepath.Join(ws.LibDir(), workspace.LibraryFilename(id))
	exe := filepath.Join(ws.BinDir(), "foo"+platform.Host.ExeSuffix)
	for _, p := range []string{lib, exe} {
		if !testutil.FileExists(p) {
			t.Errorf("%s was not installed", p)
		}
	}

	entries, err := os.ReadDir(ws.BinDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("bin/ holds %d files, want only the main executable", len(entries))
	}

	built, _ := res.Build.Output(workspace.Main)
	if testutil.MustReadFile(t, exe) != testutil.MustReadFile(t, built) {
		t.Error("installed executable differs from the build output")
	}
	if !testutil.MustModTime(t, exe).Equal(testutil.MustModTime(t, built)) {
		t.Error("installed executable does not keep the build output's mtime")
	}
}

func TestInstall_CopiesTheLibraryJustBuilt(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	writePackage(t, ws, "foo", map[string]string{"lib.rs": ""})
	b := newBuilder(t, &recordingCompiler{})
	versioned := pkgid.MustParse("foo#0.3")
	unversioned := pkgid.MustParse("foo")

	if _, err := b.Build(context.Background(), ws, versioned); err != nil {
		t.Fatal(err)
	}
	res, err := b.Install(context.Background(), ws, unversioned)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	want := filepath.Join(ws.LibDir(), workspace.LibraryFilename(unversioned))
	if len(res.Installed) != 1 || res.Installed[0] != want {
		t.Errorf("Installed = %v, want [%s]", res.Installed, want)
	}
	if stale := filepath.Join(ws.LibDir(), workspace.LibraryFilename(versioned)); testutil.FileExists(stale) {
		t.Errorf("Install() copied the 0.3 library %s", stale)
	}
}

func TestInstall_IsIdempotent(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	writePackage(t, ws, "foo", map[string]string{"main.rs": "", "lib.rs": ""})
	comp := &recordingCompiler{}
	b := newBuilder(t, comp)
	id := pkgid.MustParse("foo")

	if _, err := b.Install(context.Background(), ws, id); err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(ws.BinDir(), "foo"+platform.Host.ExeSuffix)
	before := testutil.MustModTime(t, exe)

	res, err := b.Install(context.Background(), ws, id)
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if len(res.Installed) != 0 || len(res.Unchanged) != 2 {
		t.Errorf("second Install() installed %v, unchanged %v", res.Installed, res.Unchanged)
	}
	if comp.calls() != 2 {
		t.Errorf("compiler calls = %d, want 2", comp.calls())
	}
	if after := testutil.MustModTime(t, exe); !after.Equal(before) {
		t.Errorf("installed executable mtime changed from %v to %v", before, after)
	}
}

func TestInstall_ReplacesModifiedDestination(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	writePackage(t, ws, "foo", map[string]string{"main.rs": ""})
	b := newBuilder(t, &recordingCompiler{})
	id := pkgid.MustParse("foo")

	if _, err := b.Install(context.Background(), ws, id); err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(ws.BinDir(), "foo"+platform.Host.ExeSuffix)
	testutil.MustWriteFile(t, exe, "tampered")

	res, err := b.Install(context.Background(), ws, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Installed) != 1 || testutil.MustReadFile(t, exe) == "tampered" {
		t.Errorf("Install() did not replace a modified executable (installed %v)", res.Installed)
	}
}

func TestUninstall_OnlyLibrary(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	id := pkgid.MustParse("foo#0.3")
	lib := filepath.Join(ws.LibDir(), workspace.LibraryFilename(id))
	testutil.MustWriteFile(t, lib, "lib")

	res, err := newBuilder(t, &recordingCompiler{}).Uninstall(ws, id)
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if res.Warning {
		t.Error("Uninstall() warned although a library was installed")
	}
	if len(res.Removed) != 1 || res.Removed[0] != lib {
		t.Errorf("Removed = %v, want [%s]", res.Removed, lib)
	}
	if testutil.FileExists(lib) {
		t.Error("library still exists")
	}
}

func TestUninstall_NominalLibraryName(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	id := pkgid.MustParse("foo#0.3")
	lib := filepath.Join(ws.LibDir(), workspace.OutputFilename(id, workspace.Lib))
	testutil.MustWriteFile(t, lib, "lib")

	res, err := newBuilder(t, &recordingCompiler{}).Uninstall(ws, id)
	if err != nil {
		t.Fatal(err)
	}
	if res.Warning || testutil.FileExists(lib) {
		t.Errorf("Uninstall() = %+v, library exists = %v", res, testutil.FileExists(lib))
	}
}

func TestUninstall_NothingInstalled(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	other := filepath.Join(ws.LibDir(), workspace.LibraryFilename(pkgid.MustParse("bar#0.3")))
	testutil.MustWriteFile(t, other, "lib")

	res, err := newBuilder(t, &recordingCompiler{}).Uninstall(ws, pkgid.MustParse("foo#0.3"))
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if !res.Warning {
		t.Error("Uninstall() did not warn")
	}
	if len(res.Removed) != 0 || !testutil.FileExists(other) {
		t.Errorf("Uninstall() removed %v", res.Removed)
	}
}

func TestUninstall_AfterInstall(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	writePackage(t, ws, "foo", map[string]string{"main.rs": "", "lib.rs": ""})
	b := newBuilder(t, &recordingCompiler{})
	id := pkgid.MustParse("foo")

	if _, err := b.Install(context.Background(), ws, id); err != nil {
		t.Fatal(err)
	}
	res, err := b.Uninstall(ws, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Removed) != 2 {
		t.Errorf("Removed = %v, want executable and library", res.Removed)
	}
	listing, err := b.ListInstalled(ws)
	if err != nil {
		t.Fatal(err)
	}
	if len(listing.Libraries) != 0 || len(listing.Executables) != 0 {
		t.Errorf("ListInstalled() after uninstall = %+v", listing)
	}
}
