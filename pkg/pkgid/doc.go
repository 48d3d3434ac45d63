// SPDX-License-Identifier: MPL-2.0

// Package pkgid parses and normalizes package identifiers.
//
// A package identifier is a relative, slash-separated path (for example
// "github.com/mozilla/servo-sprocket") optionally followed by "#<version>".
// The remote path is kept verbatim; the local path replaces every '-' in the
// final segment's file stem with '_', so "rust-foo" and "rust_foo" name the
// same package on disk. The short name is the file stem of the local path and
// is what artifacts are named after.
package pkgid
