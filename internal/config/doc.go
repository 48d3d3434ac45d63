// SPDX-License-Identifier: MPL-2.0

// Package config handles kiln configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/kiln/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/kiln/config.cue on macOS, %APPDATA%\kiln\config.cue
// on Windows). It covers the workspace search path, the workcache directory, the compile
// step and UI settings.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before being
// merged over the defaults. KILN_PATH and KILN_CACHE_DIR take precedence over the file;
// they are applied where the values are resolved, not here.
package config
