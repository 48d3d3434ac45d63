// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for PGO profile generation.
// They cover the hot paths of a kiln run:
//   - package identifier parsing
//   - library filename matching in large lib/ directories
//   - fingerprinting inputs and loading/saving the workcache database
//   - the no-op build, where every crate is up to date
//   - the virtual shell compile step
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -run '^$' -bench . -cpuprofile default.pgo
package benchmark
