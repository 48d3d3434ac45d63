// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kiln",
		Short: "An incremental package builder for workspaces",
		Long: TitleStyle.Render("kiln") + SubtitleStyle.Render(" - An incremental package builder for workspaces") + `

kiln builds, installs and removes packages kept in workspaces. Every
workspace has src/, build/, lib/ and bin/ directories; the workspaces
searched are listed in $KILN_PATH or in the search_path config key.

Artifacts are rebuilt only when a source file, a dependency library or
the artifact itself changed since the last build.

` + SubtitleStyle.Render("Examples:") + `
  kiln build github.com/someone/tool        Build the crates of a package
  kiln install github.com/someone/tool#0.3  Build and install version 0.3
  kiln uninstall github.com/someone/tool    Remove the installed artifacts
  kiln list                                 List installed packages
  kiln config show                          Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/kiln/config.cue)")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newInstallCommand(app))
	rootCmd.AddCommand(newUninstallCommand(app))
	rootCmd.AddCommand(newCleanCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the kiln CLI and exits with the command's exit code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	app.setDefaultLogger = true

	// fang overrides rootCmd.Version, so the version is passed as an option.
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
