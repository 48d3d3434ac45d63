// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"kiln-cli/internal/config"
)

// Color palette shared by all CLI output.
const (
	// ColorPrimary is orange, for titles and section headers.
	ColorPrimary = lipgloss.Color("#EA580C")

	// ColorMuted is gray, for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green, for compiled and installed artifacts.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red, for failed packages.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, for warnings such as uninstalling nothing.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, for package identifiers and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for descriptions and "(none)" placeholders.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success markers.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for failure markers.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// PkgStyle is for package identifiers and command names.
	PkgStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// PathStyle is for filesystem paths.
	PathStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)

// applyColorScheme pins lipgloss to a dark or light background. "auto" keeps
// terminal detection.
func applyColorScheme(scheme config.ColorScheme) {
	switch scheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}

// glamourStyle maps the color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		return string(scheme)
	default:
		return "auto"
	}
}
