// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kiln-cli/pkg/types"
)

const (
	// RuntimeVirtual runs the compile command in the embedded mvdan/sh interpreter.
	// Defined locally to avoid coupling config to internal/compiler.
	RuntimeVirtual CompilerRuntime = "virtual"
	// RuntimeNative runs the compile command with the host sh.
	RuntimeNative CompilerRuntime = "native"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// defaultWorkspaceName is the default workspace under the home directory.
	defaultWorkspaceName = "kiln"
)

var (
	// ErrInvalidCompilerRuntime is returned when a CompilerRuntime value is not recognized.
	ErrInvalidCompilerRuntime = errors.New("invalid compiler runtime")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// CompilerRuntime selects how the compile command is executed.
	CompilerRuntime string

	// InvalidCompilerRuntimeError is returned when a CompilerRuntime value is not recognized.
	// It wraps ErrInvalidCompilerRuntime for errors.Is() compatibility.
	InvalidCompilerRuntimeError struct {
		Value CompilerRuntime
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// CacheDirPath is the workcache directory.
	// The zero value ("") is valid and means "use the default cache directory".
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// SearchPath lists the workspaces searched for packages.
		SearchPath []types.FilesystemPath `json:"search_path" mapstructure:"search_path"`
		// CacheDir holds the workcache database.
		CacheDir CacheDirPath `json:"cache_dir" mapstructure:"cache_dir"`
		// Compiler configures the compile step
		Compiler CompilerConfig `json:"compiler" mapstructure:"compiler"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// CompilerConfig configures the compile step.
	CompilerConfig struct {
		// Runtime is "virtual" (default) or "native".
		Runtime CompilerRuntime `json:"runtime" mapstructure:"runtime"`
		// Command is the shell script run per crate; empty uses the built-in one.
		Command string `json:"command" mapstructure:"command"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme ("auto", "dark", "light")
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SearchPath: []types.FilesystemPath{defaultWorkspace()},
		Compiler: CompilerConfig{
			Runtime: RuntimeVirtual,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// SearchPathStrings returns SearchPath as plain strings.
func (c *Config) SearchPathStrings() []string {
	out := make([]string, len(c.SearchPath))
	for i, p := range c.SearchPath {
		out[i] = p.String()
	}
	return out
}

// Validate returns nil if every field is valid, or an *InvalidConfigError
// collecting the field errors.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range c.SearchPath {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("search_path: %w", err))
		}
	}
	if err := c.CacheDir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Compiler.Runtime.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the CompilerRuntime.
func (r CompilerRuntime) String() string { return string(r) }

// Validate returns nil if the CompilerRuntime is virtual or native.
func (r CompilerRuntime) Validate() error {
	switch r {
	case RuntimeVirtual, RuntimeNative:
		return nil
	default:
		return &InvalidCompilerRuntimeError{Value: r}
	}
}

// Error implements the error interface.
func (e *InvalidCompilerRuntimeError) Error() string {
	return fmt.Sprintf("invalid compiler runtime %q (valid: virtual, native)", e.Value)
}

// Unwrap returns ErrInvalidCompilerRuntime for errors.Is() compatibility.
func (e *InvalidCompilerRuntimeError) Unwrap() error { return ErrInvalidCompilerRuntime }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns nil if the ColorScheme is auto, dark or light.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// Validate returns nil if the path is empty or has non-space content.
func (p CacheDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidCacheDirPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath for errors.Is() compatibility.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }

func defaultWorkspace() types.FilesystemPath {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultWorkspaceName
	}
	return types.FilesystemPath(filepath.Join(home, defaultWorkspaceName))
}
