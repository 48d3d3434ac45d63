// SPDX-License-Identifier: MPL-2.0

package pkgid

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remote RemotePath
		want   LocalPath
	}{
		{"no dashes", "foo", "foo"},
		{"dashed short name", "rust-foo-bar", "rust_foo_bar"},
		{"only final stem changes", "github.com/some-org/servo-sprocket", "github.com/some-org/servo_sprocket"},
		{"extension untouched", "pkgs/my-lib.x-y", "pkgs/my_lib.x-y"},
		{"already normalized", "a-b/c_d", "a-b/c_d"},
		{"leading dot file", "dir/.hidden-pkg", "dir/.hidden_pkg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.remote)
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.remote, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.remote, got, tt.want)
			}

			again, err := Normalize(RemotePath(got))
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", got, err)
			}
			if again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	t.Parallel()

	for _, remote := range []RemotePath{"", "/foo", "/a/b-c", "foo/", "a/../b", `\server\share`} {
		t.Run(string(remote), func(t *testing.T) {
			t.Parallel()

			_, err := Normalize(remote)
			if err == nil {
				t.Fatalf("Normalize(%q) succeeded, want error", remote)
			}
			if !errors.Is(err, ErrMalformedIdentifier) {
				t.Errorf("errors.Is(err, ErrMalformedIdentifier) = false for %v", err)
			}
			var malformed *MalformedIdentifierError
			if !errors.As(err, &malformed) {
				t.Fatalf("errors.As(*MalformedIdentifierError) = false for %T", err)
			}
			if malformed.Value != string(remote) {
				t.Errorf("Value = %q, want %q", malformed.Value, remote)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantLocal LocalPath
		wantShort string
		wantVer   string
		wantNone  bool
	}{
		{"foo", "foo", "foo", "0.1", true},
		{"github.com/catamorphism/test-pkg", "github.com/catamorphism/test_pkg", "test_pkg", "0.1", true},
		{"mypkg#0.3", "mypkg", "mypkg", "0.3", false},
		{"deep/nested/pkg-name#v1.2", "deep/nested/pkg_name", "pkg_name", "v1.2", false},
		{"foo#not-a-version", "foo", "foo", "0.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			id, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if id.Local != tt.wantLocal {
				t.Errorf("Local = %q, want %q", id.Local, tt.wantLocal)
			}
			if id.ShortName != tt.wantShort {
				t.Errorf("ShortName = %q, want %q", id.ShortName, tt.wantShort)
			}
			if id.Version.String() != tt.wantVer {
				t.Errorf("Version = %q, want %q", id.Version, tt.wantVer)
			}
			if id.Version.IsNone() != tt.wantNone {
				t.Errorf("Version.IsNone() = %v, want %v", id.Version.IsNone(), tt.wantNone)
			}
		})
	}
}

func TestParse_MustBeRelativePathLike(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "#0.3", "/usr/local/foo", "/foo#0.1"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedIdentifier) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedIdentifier", in, err)
		}
	}
}

func TestID_String(t *testing.T) {
	t.Parallel()

	if got := MustParse("a/b-c#0.5").String(); got != "a/b_c-0.5" {
		t.Errorf("String() = %q, want %q", got, "a/b_c-0.5")
	}
	if got := MustParse("foo").String(); got != "foo-0.1" {
		t.Errorf("String() = %q, want %q", got, "foo-0.1")
	}
}

func TestID_Hash(t *testing.T) {
	t.Parallel()

	a := MustParse("foo#0.3")
	b := MustParse("foo#0.3")
	c := MustParse("foo#0.4")

	if a.Hash() != b.Hash() {
		t.Errorf("Hash not deterministic: %q != %q", a.Hash(), b.Hash())
	}
	if a.Hash() == c.Hash() {
		t.Errorf("Hash(%s) == Hash(%s)", a, c)
	}
	if len(a.Hash()) != 16 {
		t.Errorf("len(Hash()) = %d, want 16", len(a.Hash()))
	}

	dashed, underscored := MustParse("tools/foo-bar#1.0"), MustParse("tools/foo_bar#1.0")
	if dashed.Hash() != underscored.Hash() {
		t.Errorf("Hash(tools/foo-bar) = %q, Hash(tools/foo_bar) = %q; spellings that normalize alike must agree", dashed.Hash(), underscored.Hash())
	}
}
