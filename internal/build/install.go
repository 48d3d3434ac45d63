// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
)

type (
	// InstallResult is the outcome of Install.
	InstallResult struct {
		Build *Result
		// Installed lists destination paths that were written.
		Installed []string
		// Unchanged lists destination paths that already matched.
		Unchanged []string
	}

	// UninstallResult is the outcome of Uninstall.
	UninstallResult struct {
		Removed []string
		// Warning is set when nothing was installed for the package.
		Warning bool
	}
)

// Install builds id and copies its library into <workspace>/lib and its main
// executable into <workspace>/bin. Test and bench executables stay in the
// build directory. Destinations already identical to the build output,
// including mtime, are left alone.
func (b *Builder) Install(ctx context.Context, ws workspace.Workspace, id pkgid.ID) (*InstallResult, error) {
	res, err := b.Build(ctx, ws, id)
	if err != nil {
		return nil, err
	}
	out := &InstallResult{Build: res}

	// Copy exactly what this build produced; a matcher lookup could pick up
	// another version left in the same build directory.
	if src, ok := res.Output(workspace.Lib); ok {
		if !isRegular(src) {
			return nil, &MissingArtifactError{ID: id, Path: src}
		}
		nominal, err := ws.TargetLibrary(id)
		if err != nil {
			return nil, err
		}
		if err := out.place(src, filepath.Join(filepath.Dir(nominal), filepath.Base(src))); err != nil {
			return nil, err
		}
	}

	if src, ok := res.Output(workspace.Main); ok {
		if !isRegular(src) {
			return nil, &MissingArtifactError{ID: id, Path: src}
		}
		dst, err := ws.TargetExecutable(id)
		if err != nil {
			return nil, err
		}
		if err := out.place(src, dst); err != nil {
			return nil, err
		}
	}

	b.logger().Debug("package installed", "package", id.String(), "installed", len(out.Installed), "unchanged", len(out.Unchanged))
	return out, nil
}

func (r *InstallResult) place(src, dst string) error {
	same, err := sameFile(src, dst)
	if err != nil {
		return err
	}
	if same {
		r.Unchanged = append(r.Unchanged, dst)
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("install %s: %w", dst, err)
	}
	r.Installed = append(r.Installed, dst)
	return nil
}

// Uninstall removes id's installed executable and library. The library is
// located by name and version, falling back to its nominal filename. If
// neither exists, nothing is removed and Warning is set.
func (b *Builder) Uninstall(ws workspace.Workspace, id pkgid.ID) (*UninstallResult, error) {
	var targets []string

	exe := filepath.Join(ws.BinDir(), workspace.OutputFilename(id, workspace.Main))
	if isRegular(exe) {
		targets = append(targets, exe)
	}

	lib, found, err := ws.InstalledLibrary(id.ShortName, id.Version)
	if err != nil {
		return nil, err
	}
	if !found {
		lib = filepath.Join(ws.LibDir(), workspace.OutputFilename(id, workspace.Lib))
		found = isRegular(lib)
	}
	if found {
		targets = append(targets, lib)
	}

	res := &UninstallResult{}
	if len(targets) == 0 {
		res.Warning = true
		b.logger().Debug("nothing installed", "package", id.String(), "workspace", ws.Root())
		return res, nil
	}

	for _, p := range targets {
		if err := os.Remove(p); err != nil {
			return res, fmt.Errorf("uninstall %s: %w", p, err)
		}
		res.Removed = append(res.Removed, p)
	}
	b.logger().Debug("package uninstalled", "package", id.String(), "removed", len(res.Removed))
	return res, nil
}

// sameFile reports whether dst exists with the size, mtime and content of src.
func sameFile(src, dst string) (bool, error) {
	si, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	di, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !di.Mode().IsRegular() || si.Size() != di.Size() || !si.ModTime().Equal(di.ModTime()) {
		return false, nil
	}
	return sameContent(src, dst)
}

func sameContent(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, 64*1024)
	bufB := make([]byte, 64*1024)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errors.Is(errA, io.EOF) || errors.Is(errA, io.ErrUnexpectedEOF)
		doneB := errors.Is(errB, io.EOF) || errors.Is(errB, io.ErrUnexpectedEOF)
		if doneA || doneB {
			return doneA == doneB, nil
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
	}
}

// copyFile copies src over dst through a temp file in dst's directory,
// keeping src's permission bits and mtime.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) } // Best-effort cleanup of temp file

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		cleanup()
		return err
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return err
	}
	return nil
}

func isRegular(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
