// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/platform"
	"kiln-cli/pkg/types"
)

const (
	// Main is a package's primary executable.
	Main OutputKind = iota + 1
	// Lib is a package's dynamic library.
	Lib
	// Test is a package's test executable.
	Test
	// Bench is a package's benchmark executable.
	Bench
)

const (
	// Build is the per-package build directory.
	Build Stage = iota + 1
	// Install is the workspace-wide lib/ and bin/ directories.
	Install
)

const (
	srcDir   = "src"
	buildDir = "build"
	libDir   = "lib"
	binDir   = "bin"
)

// naming is the artifact naming of the host OS.
var naming = platform.Host

type (
	// Workspace is the root directory of a workspace.
	Workspace string

	// OutputKind is the kind of artifact a crate produces.
	OutputKind int

	// Stage selects between build-stage and install-stage locations.
	Stage int
)

// String returns the lowercase name of the OutputKind.
func (k OutputKind) String() string {
	switch k {
	case Main:
		return "main"
	case Lib:
		return "lib"
	case Test:
		return "test"
	case Bench:
		return "bench"
	default:
		return fmt.Sprintf("OutputKind(%d)", int(k))
	}
}

// ParseOutputKind returns the OutputKind named by s ("main", "lib", "test"
// or "bench").
func ParseOutputKind(s string) (OutputKind, error) {
	for _, k := range []OutputKind{Main, Lib, Test, Bench} {
		if s == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown output kind %q (valid: main, lib, test, bench)", s)
}

// IsExecutable reports whether the kind produces an executable.
func (k OutputKind) IsExecutable() bool { return k == Main || k == Test || k == Bench }

// String returns the lowercase name of the Stage.
func (s Stage) String() string {
	switch s {
	case Build:
		return "build"
	case Install:
		return "install"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// New returns the Workspace rooted at root, made absolute.
func New(root string) (Workspace, error) {
	abs, err := types.FilesystemPath(root).Abs()
	if err != nil {
		return "", &BadPathError{Path: root, Reason: "invalid workspace root", Err: err}
	}
	return Workspace(abs), nil
}

// Root returns the workspace directory.
func (w Workspace) Root() string { return string(w) }

// String returns the workspace directory.
func (w Workspace) String() string { return string(w) }

// SrcDir returns <workspace>/src.
func (w Workspace) SrcDir() string { return filepath.Join(string(w), srcDir) }

// LibDir returns <workspace>/lib.
func (w Workspace) LibDir() string { return filepath.Join(string(w), libDir) }

// BinDir returns <workspace>/bin.
func (w Workspace) BinDir() string { return filepath.Join(string(w), binDir) }

// BuildRoot returns <workspace>/build.
func (w Workspace) BuildRoot() string { return filepath.Join(string(w), buildDir) }

// PackageBuildDir returns <workspace>/build/<package-path> without creating it.
func (w Workspace) PackageBuildDir(id pkgid.ID) string {
	return filepath.Join(w.BuildRoot(), id.Local.FilePath())
}

// BuildDir returns <workspace>/build/<package-path>, creating it if needed.
func (w Workspace) BuildDir(id pkgid.ID) (string, error) {
	dir := w.PackageBuildDir(id)
	if err := ensureDir(dir, "build"); err != nil {
		return "", err
	}
	return dir, nil
}

// OutputPath returns the absolute path of the artifact of the given kind for
// id at the given stage, creating its directory. Build-stage artifacts live
// in <workspace>/build/<package-path>; installed libraries in <workspace>/lib
// and installed executables in <workspace>/bin. Library names are versioned,
// executable names never are.
func (w Workspace) OutputPath(id pkgid.ID, kind OutputKind, stage Stage) (string, error) {
	if naming.Reserved(id.ShortName) {
		return "", &BadPathError{
			Path:   id.ShortName,
			Reason: fmt.Sprintf("%q is a reserved filename on %s", id.ShortName, naming.GOOS),
		}
	}

	dir := w.outputDir(id, kind, stage)
	if err := ensureDir(dir, stage.String()); err != nil {
		return "", err
	}

	out, err := filepath.Abs(filepath.Join(dir, OutputFilename(id, kind)))
	if err != nil {
		return "", &BadPathError{Path: dir, Reason: "could not make output path absolute", Err: err}
	}
	slog.Debug("resolved output path", "package", id.String(), "kind", kind, "stage", stage, "path", out)
	return out, nil
}

// TargetFile returns the path id's artifact of the given kind would have at
// the given stage. The parent directory is created beforehand.
func (w Workspace) TargetFile(id pkgid.ID, kind OutputKind, stage Stage) (string, error) {
	return w.OutputPath(id, kind, stage)
}

// TargetExecutable returns where id's main executable is installed.
func (w Workspace) TargetExecutable(id pkgid.ID) (string, error) {
	return w.TargetFile(id, Main, Install)
}

// TargetLibrary returns the nominal, hash-free path of id's installed
// library. The workspace itself must already exist.
func (w Workspace) TargetLibrary(id pkgid.ID) (string, error) {
	if !isDir(string(w)) {
		return "", &BadPathError{Path: string(w), Reason: "workspace is not a directory"}
	}
	return w.TargetFile(id, Lib, Install)
}

// TargetTest returns where id's test executable would be installed. Test
// executables are never installed; this exists for layout checks.
func (w Workspace) TargetTest(id pkgid.ID) (string, error) {
	return w.TargetFile(id, Test, Install)
}

// TargetBench returns where id's bench executable would be installed. Bench
// executables are never installed; this exists for layout checks.
func (w Workspace) TargetBench(id pkgid.ID) (string, error) {
	return w.TargetFile(id, Bench, Install)
}

// BuiltExecutable returns id's build-stage main executable if it exists.
func (w Workspace) BuiltExecutable(id pkgid.ID) (string, bool) {
	return w.builtOutput(id, Main)
}

// BuiltTest returns id's build-stage test executable if it exists.
func (w Workspace) BuiltTest(id pkgid.ID) (string, bool) {
	return w.builtOutput(id, Test)
}

// BuiltBench returns id's build-stage bench executable if it exists.
func (w Workspace) BuiltBench(id pkgid.ID) (string, bool) {
	return w.builtOutput(id, Bench)
}

func (w Workspace) builtOutput(id pkgid.ID, kind OutputKind) (string, bool) {
	p, err := filepath.Abs(filepath.Join(w.PackageBuildDir(id), OutputFilename(id, kind)))
	if err != nil || !exists(p) {
		slog.Debug("built output not present", "package", id.String(), "kind", kind, "path", p)
		return "", false
	}
	return p, true
}

func (w Workspace) outputDir(id pkgid.ID, kind OutputKind, stage Stage) string {
	if stage == Build {
		return w.PackageBuildDir(id)
	}
	if kind == Lib {
		return w.LibDir()
	}
	return w.BinDir()
}

// OutputFilename returns the filename of id's artifact of the given kind:
// the platform library name of "<short>-<version>" for Lib, and
// "<short>", "<short>test" or "<short>bench" plus the executable suffix
// otherwise.
func OutputFilename(id pkgid.ID, kind OutputKind) string {
	switch kind {
	case Lib:
		return naming.DLLFilename(id.ShortName + "-" + id.Version.String())
	case Test:
		return naming.ExeFilename(id.ShortName + "test")
	case Bench:
		return naming.ExeFilename(id.ShortName + "bench")
	default:
		return naming.ExeFilename(id.ShortName)
	}
}
