// SPDX-License-Identifier: MPL-2.0

// Package compiler runs the external step that turns a crate source file into
// an artifact.
//
// The step is a shell command template configured by the user. Two runtimes
// execute it:
//   - virtual: the embedded mvdan/sh interpreter, identical on every host
//   - native: the host's POSIX shell (sh -c)
//
// The crate being compiled is described to the command through KILN_*
// environment variables; see Request.Env.
package compiler
