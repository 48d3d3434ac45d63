// SPDX-License-Identifier: MPL-2.0

// Package workspace resolves where packages live on disk.
//
// A workspace is a directory with four well-known children:
//
//	src/<package-path>[-<version>]/   package sources
//	build/<package-path>/             build-stage artifacts
//	lib/                              installed libraries
//	bin/                              installed executables
//
// Workspaces are listed, in priority order, by the KILN_PATH search path.
// The first entry is the default workspace and is created on demand.
//
// Library filenames embed an opaque crate hash
// ("<dll-prefix><short>-<hash>-<version><dll-suffix>"), so FindLibrary scans
// the candidate directory instead of computing the name.
package workspace
