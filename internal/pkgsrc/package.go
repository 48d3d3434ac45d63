// SPDX-License-Identifier: MPL-2.0

package pkgsrc

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"kiln-cli/internal/issue"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
)

// ErrNoCrates is the sentinel error wrapped by NoCratesError.
var ErrNoCrates = errors.New("package has no crates")

type (
	// Crate is one compilation unit of a package.
	Crate struct {
		Kind   workspace.OutputKind
		Source string
	}

	// Package is a package source directory, ready to build.
	Package struct {
		ID           pkgid.ID
		Dir          string
		Crates       []Crate
		Dependencies []pkgid.ID
		// Inputs lists every regular file under Dir, sorted. Directories
		// whose name starts with '.' are skipped.
		Inputs []string
	}

	// NoCratesError reports a package directory with nothing to build.
	NoCratesError struct {
		ID  pkgid.ID
		Dir string
	}
)

// Error implements the error interface.
func (e *NoCratesError) Error() string {
	return fmt.Sprintf("package %s in %s has no crates (expected lib.*, main.*, test.* or bench.*, or [[crate]] in %s)", e.ID, e.Dir, ManifestFile)
}

// Unwrap returns ErrNoCrates so callers can use errors.Is for programmatic detection.
func (e *NoCratesError) Unwrap() error { return ErrNoCrates }

// Load reads the package id from dir. Manifest and empty-package errors come
// back wrapped in an *issue.ActionableError carrying fix-up suggestions.
func Load(id pkgid.ID, dir string) (*Package, error) {
	pkg, err := load(id, dir)
	var nc *NoCratesError
	switch {
	case errors.As(err, &nc):
		return nil, issue.Wrap(err, "load package", id.String(),
			"Add a lib.* or main.* source file to "+dir,
			"Or declare crates with [[crate]] entries in "+ManifestFile)
	case errors.Is(err, ErrInvalidManifest):
		return nil, issue.Wrap(err, "load package", id.String(),
			"Fix "+ManifestFile+": dependencies is a list of package identifiers such as \"bar#1.0\"",
			"Each [[crate]] needs a kind (lib, main, test or bench) and a relative source file")
	}
	return pkg, err
}

func load(id pkgid.ID, dir string) (*Package, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	pkg := &Package{ID: id, Dir: dir}

	if manifest != nil {
		for _, raw := range manifest.Dependencies {
			dep, err := pkgid.Parse(raw)
			if err != nil {
				return nil, &ManifestError{Path: manifestPath, Err: fmt.Errorf("dependency %q: %w", raw, err)}
			}
			pkg.Dependencies = append(pkg.Dependencies, dep)
		}
	}

	if manifest != nil && len(manifest.Crates) > 0 {
		pkg.Crates, err = declaredCrates(dir, manifestPath, manifest.Crates)
	} else {
		pkg.Crates, err = conventionCrates(dir)
	}
	if err != nil {
		return nil, err
	}
	if len(pkg.Crates) == 0 {
		return nil, &NoCratesError{ID: id, Dir: dir}
	}

	pkg.Inputs, err = listInputs(dir)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded package", "package", id.String(), "dir", dir, "crates", len(pkg.Crates), "dependencies", len(pkg.Dependencies), "inputs", len(pkg.Inputs))
	return pkg, nil
}

// Crate returns the package's crate of the given kind.
func (p *Package) Crate(kind workspace.OutputKind) (Crate, bool) {
	for _, c := range p.Crates {
		if c.Kind == kind {
			return c, true
		}
	}
	return Crate{}, false
}

func declaredCrates(dir, manifestPath string, specs []CrateSpec) ([]Crate, error) {
	crates := make([]Crate, 0, len(specs))
	for i, spec := range specs {
		kind, err := workspace.ParseOutputKind(spec.Kind)
		if err != nil {
			return nil, &ManifestError{Path: manifestPath, Err: fmt.Errorf("crate[%d]: %w", i, err)}
		}
		if slices.ContainsFunc(crates, func(c Crate) bool { return c.Kind == kind }) {
			return nil, &ManifestError{Path: manifestPath, Err: fmt.Errorf("crate[%d]: duplicate %s crate", i, kind)}
		}
		if spec.Source == "" || filepath.IsAbs(spec.Source) {
			return nil, &ManifestError{Path: manifestPath, Err: fmt.Errorf("crate[%d]: source must be a relative path", i)}
		}

		src := filepath.Join(dir, filepath.FromSlash(spec.Source))
		if rel, err := filepath.Rel(dir, src); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, &ManifestError{Path: manifestPath, Err: fmt.Errorf("crate[%d]: source %q escapes the package directory", i, spec.Source)}
		}
		if info, err := os.Stat(src); err != nil || !info.Mode().IsRegular() {
			return nil, &ManifestError{Path: manifestPath, Err: fmt.Errorf("crate[%d]: source %q is not a file", i, spec.Source)}
		}
		crates = append(crates, Crate{Kind: kind, Source: src})
	}
	return crates, nil
}

// conventionCrates picks lib.*, main.*, test.* and bench.* from dir. When a
// stem appears with several extensions, the first in lexical order wins.
func conventionCrates(dir string) ([]Crate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory %s: %w", dir, err)
	}

	var crates []Crate
	for _, kind := range []workspace.OutputKind{workspace.Lib, workspace.Main, workspace.Test, workspace.Bench} {
		for _, e := range entries {
			name := e.Name()
			if !e.Type().IsRegular() || name == ManifestFile {
				continue
			}
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if stem == kind.String() && stem != name {
				crates = append(crates, Crate{Kind: kind, Source: filepath.Join(dir, name)})
				break
			}
		}
	}
	return crates, nil
}

func listInputs(dir string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			inputs = append(inputs, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sources in %s: %w", dir, err)
	}
	return inputs, nil
}
