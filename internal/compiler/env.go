// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const envPrefix = "KILN_"

// Env returns the variables describing the request to the compile command:
//
//	KILN_SRC       crate source file
//	KILN_OUT       artifact path
//	KILN_OUT_DIR   directory of KILN_OUT
//	KILN_KIND      main, lib, test or bench
//	KILN_NAME      package short name
//	KILN_VERSION   package version
//	KILN_HASH      package crate hash
//	KILN_LIB_FILE  artifact filename, set for libraries only
//	KILN_LIB_DIRS  directories of Deps, joined with KILN_PATH_SEP
//	KILN_PATH_SEP  os.PathListSeparator (':' or ';')
func (r Request) Env() map[string]string {
	env := map[string]string{
		"KILN_SRC":      r.Source,
		"KILN_OUT":      r.Output,
		"KILN_OUT_DIR":  r.OutDir(),
		"KILN_KIND":     r.Kind.String(),
		"KILN_NAME":     r.Package.ShortName,
		"KILN_VERSION":  r.Package.Version.String(),
		"KILN_HASH":     r.Package.Hash(),
		"KILN_LIB_FILE": "",
		"KILN_LIB_DIRS": strings.Join(r.libDirs(), string(os.PathListSeparator)),
		"KILN_PATH_SEP": string(os.PathListSeparator),
	}
	if !r.Kind.IsExecutable() {
		env["KILN_LIB_FILE"] = filepath.Base(r.Output)
	}
	return env
}

// libDirs returns the distinct directories of r.Deps in first-seen order.
func (r Request) libDirs() []string {
	var dirs []string
	for _, dep := range r.Deps {
		dir := filepath.Dir(dep)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// environ returns the host environment without KILN_* variables, followed by
// the request's variables in sorted order.
func environ(host []string, vars map[string]string) []string {
	result := make([]string, 0, len(host)+len(vars))
	for _, e := range host {
		name, _, ok := strings.Cut(e, "=")
		if ok && strings.HasPrefix(name, envPrefix) {
			continue
		}
		result = append(result, e)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		result = append(result, k+"="+vars[k])
	}
	return result
}

func dirOf(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Dir(p)
}
