// SPDX-License-Identifier: MPL-2.0

package pkgsrc

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"kiln-cli/internal/issue"
	"kiln-cli/internal/testutil"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
)

func TestLoad_ConventionCrates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "lib.rs"), "pub fn f() {}")
	testutil.MustWriteFile(t, filepath.Join(dir, "main.rs"), "fn main() {}")
	testutil.MustWriteFile(t, filepath.Join(dir, "test.rs"), "#[test] fn t() {}")
	testutil.MustWriteFile(t, filepath.Join(dir, "util.rs"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "nested", "bench.rs"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: main")

	pkg, err := Load(pkgid.MustParse("foo"), dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	kinds := make([]workspace.OutputKind, 0, len(pkg.Crates))
	for _, c := range pkg.Crates {
		kinds = append(kinds, c.Kind)
	}
	want := []workspace.OutputKind{workspace.Lib, workspace.Main, workspace.Test}
	if len(kinds) != len(want) {
		t.Fatalf("crate kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("crate[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if _, ok := pkg.Crate(workspace.Bench); ok {
		t.Error("a nested bench.rs was picked up as a crate")
	}

	if len(pkg.Inputs) != 5 {
		t.Errorf("Inputs = %v, want the 5 non-hidden files", pkg.Inputs)
	}
	for _, in := range pkg.Inputs {
		if filepath.Base(in) == "HEAD" {
			t.Errorf("Inputs contains %s from a hidden directory", in)
		}
	}
}

func TestLoad_Manifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "src", "core.rs"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "main.rs"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, ManifestFile), `
dependencies = ["github.com/someone/dep-lib#0.2", "other"]

[[crate]]
kind = "lib"
source = "src/core.rs"
`)

	pkg, err := Load(pkgid.MustParse("foo"), dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(pkg.Crates) != 1 || pkg.Crates[0].Kind != workspace.Lib {
		t.Fatalf("Crates = %+v, want only the declared lib", pkg.Crates)
	}
	if pkg.Crates[0].Source != filepath.Join(dir, "src", "core.rs") {
		t.Errorf("Source = %q", pkg.Crates[0].Source)
	}
	if len(pkg.Dependencies) != 2 {
		t.Fatalf("Dependencies = %v", pkg.Dependencies)
	}
	if d := pkg.Dependencies[0]; d.ShortName != "dep_lib" || d.Version.String() != "0.2" {
		t.Errorf("Dependencies[0] = %+v", d)
	}
	if !pkg.Dependencies[1].Version.IsNone() {
		t.Errorf("Dependencies[1] version = %s, want none", pkg.Dependencies[1].Version)
	}
}

func TestLoad_ManifestWithOnlyDependencies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "main.rs"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, ManifestFile), `dependencies = ["dep"]`)

	pkg, err := Load(pkgid.MustParse("foo"), dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := pkg.Crate(workspace.Main); !ok || len(pkg.Dependencies) != 1 {
		t.Errorf("Load() = %+v, want convention crates plus the dependency", pkg)
	}
}

func TestLoad_NoCrates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "README"), "")

	_, err := Load(pkgid.MustParse("foo"), dir)
	if !errors.Is(err, ErrNoCrates) {
		t.Fatalf("Load() error = %v, want ErrNoCrates", err)
	}
	var nc *NoCratesError
	if !errors.As(err, &nc) || nc.Dir != dir {
		t.Errorf("errors.As(*NoCratesError) = %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || len(ae.Suggestions) == 0 {
		t.Fatalf("Load() error = %#v, want an *issue.ActionableError with suggestions", err)
	}
	if !strings.Contains(ae.Format(false), "lib.* or main.*") {
		t.Errorf("Format() = %q, want the crate naming hint", ae.Format(false))
	}
}

func TestLoad_InvalidManifests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
	}{
		{"syntax", "[[crate]\nkind = "},
		{"unknown key", "edition = \"2024\""},
		{"unknown kind", "[[crate]]\nkind = \"plugin\"\nsource = \"main.rs\""},
		{"duplicate kind", "[[crate]]\nkind = \"main\"\nsource = \"main.rs\"\n[[crate]]\nkind = \"main\"\nsource = \"main.rs\""},
		{"missing source", "[[crate]]\nkind = \"main\"\nsource = \"nope.rs\""},
		{"escaping source", "[[crate]]\nkind = \"main\"\nsource = \"../main.rs\""},
		{"bad dependency", "dependencies = [\"/abs/dep\"]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			testutil.MustWriteFile(t, filepath.Join(dir, "main.rs"), "")
			testutil.MustWriteFile(t, filepath.Join(dir, ManifestFile), tt.manifest)

			_, err := Load(pkgid.MustParse("foo"), dir)
			if !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("Load() error = %v, want ErrInvalidManifest", err)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Resource != pkgid.MustParse("foo").String() || len(ae.Suggestions) == 0 {
				t.Errorf("Load() error = %#v, want suggestions for foo", err)
			}
		})
	}
}

func TestReadManifest_Missing(t *testing.T) {
	t.Parallel()

	m, err := ReadManifest(filepath.Join(t.TempDir(), ManifestFile))
	if m != nil || err != nil {
		t.Errorf("ReadManifest() = (%v, %v), want (nil, nil)", m, err)
	}
}
