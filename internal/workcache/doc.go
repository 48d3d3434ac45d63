// SPDX-License-Identifier: MPL-2.0

// Package workcache decides whether a build artifact can be reused.
//
// Every input and output of a work unit (one compiler invocation, identified
// by the path of the artifact it produces) is fingerprinted when the unit
// runs. On the next run the unit is skipped only if every recorded
// fingerprint still matches the file on disk.
//
// A fingerprint is a BLAKE3 keyed hash of the file's contents and its
// modification time. Copying a file unchanged but with a new mtime therefore
// invalidates it; this is a known limitation kept for parity with the
// established cache format.
//
// Fingerprints persist in a CUE document (kiln_db.cue) under the cache
// directory. It is loaded once, mutated in memory and flushed once at the end
// of a run; concurrent kiln processes are not coordinated.
package workcache
