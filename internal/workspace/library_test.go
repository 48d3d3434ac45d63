// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"path/filepath"
	"testing"

	"kiln-cli/internal/testutil"
	"kiln-cli/pkg/pkgid"
)

func writeLibs(t *testing.T, dir string, bases ...string) {
	t.Helper()
	for _, base := range bases {
		testutil.MustWriteFile(t, filepath.Join(dir, naming.DLLFilename(base)), base)
	}
}

func TestFindLibrary_PicksMatchingShortName(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	dir := filepath.Join(ws.BuildRoot(), "foo")
	writeLibs(t, dir, "bar-9f3a2-0.3", "foo-9f3a2-0.3")

	got, ok, err := ws.FindLibrary("foo", "foo", pkgid.ParseVersion("0.3"), Build)
	if err != nil {
		t.Fatalf("FindLibrary() error = %v", err)
	}
	if !ok {
		t.Fatal("FindLibrary() found nothing")
	}
	if want := filepath.Join(dir, naming.DLLFilename("foo-9f3a2-0.3")); got != want {
		t.Errorf("FindLibrary() = %q, want %q", got, want)
	}
}

func TestFindLibrary_NeverReturnsOtherShortName(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	writeLibs(t, ws.LibDir(), "bar-9f3a2-0.3", "foobar-9f3a2-0.3", "foo_x-9f3a2-0.3")

	for _, v := range []pkgid.Version{pkgid.ParseVersion("0.3"), pkgid.NoVersion} {
		got, ok, err := ws.FindLibrary("foo", "foo", v, Install)
		if err != nil {
			t.Fatalf("FindLibrary() error = %v", err)
		}
		if ok {
			t.Errorf("FindLibrary(foo, %s) = %q, want no match", v, got)
		}
	}
}

func TestFindLibrary_Versions(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	writeLibs(t, ws.LibDir(), "foo-0a1b2c-1.0")

	tests := []struct {
		name    string
		version pkgid.Version
		want    bool
	}{
		{"exact", pkgid.ParseVersion("1.0"), true},
		{"tag form", pkgid.ParseVersion("v1.0"), true},
		{"wildcard", pkgid.NoVersion, true},
		{"other version", pkgid.ParseVersion("2.0"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok, err := ws.InstalledLibrary("foo", tt.version)
			if err != nil {
				t.Fatalf("InstalledLibrary() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("InstalledLibrary(foo, %s) found = %v, want %v", tt.version, ok, tt.want)
			}
		})
	}
}

func TestFindLibrary_MissingDirectory(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	got, ok, err := ws.FindLibrary("nope", "nope", pkgid.NoVersion, Build)
	if err != nil || ok || got != "" {
		t.Errorf("FindLibrary() = (%q, %v, %v), want (\"\", false, nil)", got, ok, err)
	}
}

func TestFindLibrary_IgnoresNonLibraries(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	testutil.MustWriteFile(t, filepath.Join(ws.LibDir(), "foo-9f3a2-0.3.txt"), "")
	testutil.MustMkdirAll(t, filepath.Join(ws.LibDir(), naming.DLLFilename("foo-9f3a2-0.3")), 0o755)

	if _, ok, err := ws.InstalledLibrary("foo", pkgid.NoVersion); ok || err != nil {
		t.Errorf("InstalledLibrary() matched a non-library (ok=%v, err=%v)", ok, err)
	}
}

func TestRequireLibrary(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	id := pkgid.MustParse("dep#0.2")

	_, err := ws.RequireLibrary(id, Install)
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("RequireLibrary() error = %v, want ErrArtifactNotFound", err)
	}

	writeLibs(t, ws.LibDir(), "dep-77aa-0.2")
	got, err := ws.RequireLibrary(id, Install)
	if err != nil {
		t.Fatalf("RequireLibrary() error = %v", err)
	}
	if filepath.Base(got) != naming.DLLFilename("dep-77aa-0.2") {
		t.Errorf("RequireLibrary() = %q", got)
	}
}

func TestMatchLibraryStem(t *testing.T) {
	t.Parallel()

	v03 := pkgid.ParseVersion("0.3")
	tests := []struct {
		stem    string
		prefix  string
		version pkgid.Version
		want    bool
	}{
		{"libfoo-9f3a2-0.3", "libfoo", v03, true},
		{"libbar-9f3a2-0.3", "libfoo", v03, false},
		{"libfoo-0.3", "libfoo", v03, false},
		{"libfoo-9f3a2-0.4", "libfoo", v03, false},
		{"libfoo-12345-0.3", "libfoo", pkgid.NoVersion, true},
		{"libfoo-9f3a2-v0.3", "libfoo", v03, true},
		{"libfoo-9f3a2-0.3-garbage", "libfoo", v03, true},
		{"libfoo-bar-9f3a2-0.3", "libfoo", v03, false},
		{"", "libfoo", v03, false},
	}

	for _, tt := range tests {
		if got := matchLibraryStem(tt.stem, tt.prefix, tt.version); got != tt.want {
			t.Errorf("matchLibraryStem(%q, %q, %s) = %v, want %v", tt.stem, tt.prefix, tt.version, got, tt.want)
		}
	}
}

func TestParseLibraryFilename(t *testing.T) {
	t.Parallel()

	lib, ok := ParseLibraryFilename(naming.DLLFilename("foo_bar-9f3a2-1.2.3"))
	if !ok {
		t.Fatal("ParseLibraryFilename() failed")
	}
	if lib.Name != "foo_bar" || lib.Hash != "9f3a2" || lib.Version.Revision() != "1.2.3" {
		t.Errorf("ParseLibraryFilename() = %+v", lib)
	}

	for _, bad := range []string{"foo", naming.DLLFilename("foo-1.0"), naming.DLLFilename("foo-abc")} {
		if _, ok := ParseLibraryFilename(bad); ok {
			t.Errorf("ParseLibraryFilename(%q) succeeded", bad)
		}
	}
}

func TestInstalledLibraries(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	if libs, err := ws.InstalledLibraries(); err != nil || len(libs) != 0 {
		t.Fatalf("InstalledLibraries() on empty workspace = (%v, %v)", libs, err)
	}

	writeLibs(t, ws.LibDir(), "alpha-aa11-0.1", "beta-bb22-2.0")
	testutil.MustWriteFile(t, filepath.Join(ws.LibDir(), "README"), "")

	libs, err := ws.InstalledLibraries()
	if err != nil {
		t.Fatalf("InstalledLibraries() error = %v", err)
	}
	if len(libs) != 2 {
		t.Fatalf("InstalledLibraries() returned %d entries, want 2", len(libs))
	}
	if libs[0].Name != "alpha" || libs[1].Name != "beta" {
		t.Errorf("InstalledLibraries() names = %q, %q", libs[0].Name, libs[1].Name)
	}
}

func TestLibraryFilename_RoundTripsThroughMatcher(t *testing.T) {
	t.Parallel()

	ws := Workspace(t.TempDir())
	id := pkgid.MustParse("github.com/someone/my-lib#2.1")
	testutil.MustWriteFile(t, filepath.Join(ws.PackageBuildDir(id), LibraryFilename(id)), "lib")

	got, ok, err := ws.BuiltLibrary(id)
	if err != nil || !ok {
		t.Fatalf("BuiltLibrary() = (%q, %v, %v)", got, ok, err)
	}
	lib, ok := ParseLibraryFilename(filepath.Base(got))
	if !ok || lib.Name != "my_lib" || lib.Hash != id.Hash() || lib.Version.String() != "2.1" {
		t.Errorf("ParseLibraryFilename(%q) = (%+v, %v)", filepath.Base(got), lib, ok)
	}
}
