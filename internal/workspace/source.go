// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	"kiln-cli/pkg/pkgid"
)

// SourceCandidates lists the directories that may hold id's sources, most
// specific first: src/<path>-<version>, then src/<path>. None of them is
// checked for existence.
func (w Workspace) SourceCandidates(id pkgid.ID) []string {
	local := id.Local.FilePath()
	return []string{
		filepath.Join(w.SrcDir(), local+"-"+id.Version.String()),
		filepath.Join(w.SrcDir(), local),
	}
}

// FirstSourceDir returns the directory holding id's sources: the first
// existing SourceCandidates entry, otherwise the first directory under src/
// (in lexical walk order) named "<short>-<version>" whose version satisfies
// id's.
func (w Workspace) FirstSourceDir(id pkgid.ID) (string, bool) {
	for _, dir := range w.SourceCandidates(id) {
		if isDir(dir) {
			return dir, true
		}
	}
	return w.findVersionedDir(id)
}

// ContainsPackage reports whether FirstSourceDir finds id in w.
func (w Workspace) ContainsPackage(id pkgid.ID) bool {
	_, found := w.FirstSourceDir(id)
	slog.Debug("checked workspace for package", "workspace", w.Root(), "package", id.String(), "found", found)
	return found
}

func (w Workspace) findVersionedDir(id pkgid.ID) (string, bool) {
	src := w.SrcDir()
	var found string
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == src {
				return err
			}
			return nil
		}
		if !d.IsDir() || p == src {
			return nil
		}
		if name, v, ok := pkgid.SplitVersion(d.Name(), '-'); ok && name == id.ShortName && id.Version.Matches(v) {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		slog.Debug("could not scan workspace sources", "workspace", w.Root(), "error", err)
	}
	return found, found != ""
}
