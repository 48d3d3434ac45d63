// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
)

// DirMode is the permission for every directory kiln creates: read, write
// and execute for the owner only.
const DirMode os.FileMode = 0o700

// MakeDirRWX creates the single directory p with DirMode. It fails if p
// already exists or its parent does not.
func MakeDirRWX(p string) error {
	return os.Mkdir(p, DirMode)
}

// ensureDir creates p and any missing parents. Existing directories are
// left as they are.
func ensureDir(p, what string) error {
	if err := os.MkdirAll(p, DirMode); err != nil {
		return &BadPathError{Path: p, Reason: fmt.Sprintf("could not create the %s directory", what), Err: err}
	}
	return nil
}

// isDir reports whether p exists and is a directory.
func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// exists reports whether p exists. Errors other than "not exist" count as
// existing so callers surface them when they try to use the path.
func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
