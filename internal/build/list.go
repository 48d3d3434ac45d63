// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
)

type (
	// Listing is what a workspace has installed.
	Listing struct {
		Libraries   []workspace.LibraryFile
		Executables []string
	}

	// CleanResult is the outcome of Clean.
	CleanResult struct {
		Dir     string
		Removed bool
	}
)

// ListInstalled returns the libraries in <workspace>/lib, sorted by name
// then version, and the files in <workspace>/bin, sorted by name.
func (b *Builder) ListInstalled(ws workspace.Workspace) (*Listing, error) {
	libs, err := ws.InstalledLibraries()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(libs, func(a, c workspace.LibraryFile) int {
		if n := strings.Compare(a.Name, c.Name); n != 0 {
			return n
		}
		return a.Version.Compare(c.Version)
	})

	entries, err := os.ReadDir(ws.BinDir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("list %s: %w", ws.BinDir(), err)
	}
	var exes []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			exes = append(exes, filepath.Join(ws.BinDir(), e.Name()))
		}
	}
	slices.Sort(exes)

	return &Listing{Libraries: libs, Executables: exes}, nil
}

// Clean removes id's build directory and forgets every work unit in it, so
// the next Build compiles from scratch. Installed artifacts are kept.
func (b *Builder) Clean(ws workspace.Workspace, id pkgid.ID) (*CleanResult, error) {
	dir := ws.PackageBuildDir(id)
	res := &CleanResult{Dir: dir}

	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("clean %s: %w", dir, err)
		}
		res.Removed = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("clean %s: %w", dir, err)
	}

	b.Cache.ForgetUnder(dir)
	b.logger().Debug("package cleaned", "package", id.String(), "dir", dir, "removed", res.Removed)
	return res, nil
}
