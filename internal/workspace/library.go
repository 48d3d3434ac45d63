// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kiln-cli/pkg/pkgid"
)

// LibraryFile is a library filename split into its parts.
type LibraryFile struct {
	Name    string
	Hash    string
	Version pkgid.Version
	Path    string
}

// FindLibrary looks for a library named short with the given version, under
// <workspace>/build/<localPath> for the Build stage or <workspace>/lib for
// Install. NoVersion matches any version. The first matching file in
// directory order wins. A missing directory is not an error.
func (w Workspace) FindLibrary(localPath pkgid.LocalPath, short string, version pkgid.Version, stage Stage) (string, bool, error) {
	dir := w.LibDir()
	if stage == Build {
		dir = filepath.Join(w.BuildRoot(), localPath.FilePath())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("library directory does not exist", "dir", dir, "library", short)
			return "", false, nil
		}
		return "", false, &BadPathError{Path: dir, Reason: "could not list library directory", Err: err}
	}

	prefix := naming.DLLPrefix + short
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, naming.DLLSuffix) {
			continue
		}
		stem := strings.TrimSuffix(name, naming.DLLSuffix)
		if matchLibraryStem(stem, prefix, version) {
			found := filepath.Join(dir, name)
			slog.Debug("found library", "library", short, "version", version.String(), "path", found)
			return found, true, nil
		}
	}

	slog.Debug("no library found", "dir", dir, "library", short, "version", version.String())
	return "", false, nil
}

// BuiltLibrary returns id's build-stage library if one exists.
func (w Workspace) BuiltLibrary(id pkgid.ID) (string, bool, error) {
	return w.FindLibrary(id.Local, id.ShortName, id.Version, Build)
}

// InstalledLibrary returns the installed library named short matching
// version, if any.
func (w Workspace) InstalledLibrary(short string, version pkgid.Version) (string, bool, error) {
	return w.FindLibrary(pkgid.LocalPath(short), short, version, Install)
}

// RequireLibrary is FindLibrary for callers that cannot proceed without the
// library; absence is reported as an ArtifactNotFoundError.
func (w Workspace) RequireLibrary(id pkgid.ID, stage Stage) (string, error) {
	p, ok, err := w.FindLibrary(id.Local, id.ShortName, id.Version, stage)
	if err != nil {
		return "", err
	}
	if !ok {
		dir := w.LibDir()
		if stage == Build {
			dir = w.PackageBuildDir(id)
		}
		return "", &ArtifactNotFoundError{Name: id.String(), Dir: dir}
	}
	return p, nil
}

// InstalledLibraries lists every file in <workspace>/lib that follows the
// library naming convention.
func (w Workspace) InstalledLibraries() ([]LibraryFile, error) {
	entries, err := os.ReadDir(w.LibDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", w.LibDir(), err)
	}

	var libs []LibraryFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lib, ok := ParseLibraryFilename(entry.Name())
		if !ok {
			continue
		}
		lib.Path = filepath.Join(w.LibDir(), entry.Name())
		libs = append(libs, lib)
	}
	return libs, nil
}

// ParseLibraryFilename splits "<dll-prefix><name>-<hash>-<version><dll-suffix>".
func ParseLibraryFilename(filename string) (LibraryFile, bool) {
	if !strings.HasSuffix(filename, naming.DLLSuffix) || !strings.HasPrefix(filename, naming.DLLPrefix) {
		return LibraryFile{}, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(filename, naming.DLLPrefix), naming.DLLSuffix)
	rest, version, ok := pkgid.SplitVersion(stem, '-')
	if !ok {
		return LibraryFile{}, false
	}
	j := strings.LastIndexByte(rest, '-')
	if j <= 0 || j == len(rest)-1 {
		return LibraryFile{}, false
	}
	return LibraryFile{Name: rest[:j], Hash: rest[j+1:], Version: version}, true
}

// matchLibraryStem reports whether stem has the form
// "<prefix>-<hash>-<version>". Names and versions may both contain dashes,
// so candidates are tried right to left: the tail after the right-most dash
// is parsed as a version; on a match, the text before the next dash to the
// left must equal prefix. Otherwise the tail is dropped and the scan repeats.
func matchLibraryStem(stem, prefix string, version pkgid.Version) bool {
	for stem != "" {
		i := strings.LastIndexByte(stem, '-')
		if i < 0 {
			return false
		}
		if found, ok := pkgid.TryParseVersion(stem[i+1:]); ok && version.Matches(found) {
			j := strings.LastIndexByte(stem[:i], '-')
			if j < 0 {
				return false
			}
			return stem[:j] == prefix
		}
		stem = stem[:i]
	}
	return false
}

// LibraryFilename returns the filename the compile step gives id's library:
// the platform library name of "<short>-<hash>-<version>".
func LibraryFilename(id pkgid.ID) string {
	return naming.DLLFilename(id.ShortName + "-" + id.Hash() + "-" + id.Version.String())
}
