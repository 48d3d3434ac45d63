// SPDX-License-Identifier: MPL-2.0

// Package build turns package sources into installed artifacts.
//
// A Builder owns the workcache and the compiler for one run. Build compiles
// every crate of a package into <workspace>/build/<path>, skipping crates
// whose inputs and output still match their recorded fingerprints. Install
// builds and then copies the library and main executable into the
// workspace's lib/ and bin/ directories. Uninstall and Clean undo those
// steps.
//
// Packages are built one at a time in the order the caller asks for them;
// dependencies must already be built or installed.
package build
