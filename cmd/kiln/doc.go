// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for kiln.
//
// This package implements the Cobra command hierarchy for the kiln CLI: the
// root command, the build/install/uninstall/clean/list package commands, watch
// mode and the config subcommands. Command handlers delegate to internal/build through
// the App composition root.
package cmd
