// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package holds the per-OS naming conventions for build artifacts
// (dynamic library prefix and suffix, executable suffix) and the Windows
// reserved filenames that can never be used as an artifact name.
package platform
