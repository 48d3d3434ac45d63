// SPDX-License-Identifier: MPL-2.0

// Package pkgsrc reads a package source directory: which crates it builds,
// which packages it links against and which files feed the build.
//
// Crates are declared in an optional kiln.toml manifest:
//
//	dependencies = ["github.com/someone/dep#0.2"]
//
//	[[crate]]
//	kind = "lib"
//	source = "src/lib.rs"
//
// Without [[crate]] tables, crates are found by convention: a file at the
// package root whose stem is lib, main, test or bench is the crate of that
// kind.
package pkgsrc
