// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"kiln-cli/internal/config"
	"kiln-cli/internal/workcache"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/types"
)

// newConfigCommand creates the `kiln config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kiln configuration",
		Long: `Manage kiln configuration.

Configuration is stored in:
  - Linux: ~/.config/kiln/config.cue
  - macOS: ~/Library/Application Support/kiln/config.cue
  - Windows: %APPDATA%\kiln\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath()
		},
	})

	return cfgCmd
}

// showConfig prints where the configuration came from, the values the
// environment overrides, and the effective configuration as CUE.
func (a *App) showConfig(ctx context.Context) error {
	loaded, err := config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configPath)})
	if err != nil {
		return a.configError(err)
	}

	fmt.Fprintln(a.stdout, "// "+TitleStyle.Render("Current Configuration"))
	if loaded.Path != "" {
		fmt.Fprintf(a.stdout, "// %s: %s\n", PkgStyle.Render("config file"), loaded.Path)
	} else {
		fmt.Fprintf(a.stdout, "// %s: %s\n", PkgStyle.Render("config file"), SubtitleStyle.Render("(using defaults)"))
	}
	for _, key := range []string{workspace.SearchPathEnv, workcache.CacheDirEnv} {
		if v, ok := a.LookupEnv(key); ok {
			fmt.Fprintf(a.stdout, "// %s: %s=%q\n", WarningStyle.Render("overridden by"), key, v)
		}
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprint(a.stdout, config.GenerateCUE(loaded.Config))
	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return a.configError(err)
	}
	if created {
		fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), PathStyle.Render(path))
	} else {
		fmt.Fprintf(a.stdout, "%s Configuration already exists at %s\n", SubtitleStyle.Render("•"), PathStyle.Render(path))
	}
	return nil
}

func (a *App) showConfigPath() error {
	if a.configPath != "" {
		fmt.Fprintf(a.stdout, "Config file: %s\n", a.configPath)
		return nil
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(a.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
