// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"kiln-cli/pkg/pkgid"
)

// SearchPathEnv is the environment variable listing workspaces, separated by
// the OS path list separator.
const SearchPathEnv = "KILN_PATH"

// SearchPath is an ordered, non-empty list of workspaces.
type SearchPath []Workspace

// NewSearchPath builds a SearchPath from directory entries, dropping blank
// ones. An empty result is ErrEmptySearchPath.
func NewSearchPath(entries []string) (SearchPath, error) {
	var sp SearchPath
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		ws, err := New(e)
		if err != nil {
			return nil, err
		}
		sp = append(sp, ws)
	}
	if len(sp) == 0 {
		return nil, ErrEmptySearchPath
	}
	return sp, nil
}

// ResolveSearchPath returns the search path from SearchPathEnv when it is
// set, even to an empty value, and from configured otherwise.
func ResolveSearchPath(lookupEnv func(string) (string, bool), configured []string) (SearchPath, error) {
	if value, ok := lookupEnv(SearchPathEnv); ok {
		slog.Debug("using search path from environment", "env", SearchPathEnv, "value", value)
		return NewSearchPath(filepath.SplitList(value))
	}
	return NewSearchPath(configured)
}

// Default returns the first workspace, creating it with DirMode if it does
// not exist yet.
func (p SearchPath) Default() (Workspace, error) {
	if len(p) == 0 {
		return "", ErrEmptySearchPath
	}
	ws := p[0]
	if !isDir(ws.Root()) {
		slog.Debug("creating default workspace", "path", ws.Root())
		if err := ensureDir(ws.Root(), "default workspace"); err != nil {
			return "", err
		}
	}
	return ws, nil
}

// Contains reports whether dir is one of the search path's workspaces.
func (p SearchPath) Contains(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return slices.Contains(p, Workspace(abs))
}

// ParentWorkspaces returns the workspaces whose src/ contains id, in search
// path order.
func (p SearchPath) ParentWorkspaces(id pkgid.ID) []Workspace {
	var found []Workspace
	for _, ws := range p {
		if ws.ContainsPackage(id) {
			found = append(found, ws)
		}
	}
	return found
}

// Strings returns the workspace roots.
func (p SearchPath) Strings() []string {
	out := make([]string, len(p))
	for i, ws := range p {
		out[i] = ws.Root()
	}
	return out
}
