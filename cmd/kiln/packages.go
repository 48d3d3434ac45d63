// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kiln-cli/internal/build"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/types"
)

const packageArgs = "<package>[#<version>]..."

// packageOp is run once per package argument.
type packageOp func(ctx context.Context, s *session, ws workspace.Workspace, id pkgid.ID) error

func newBuildCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "build " + packageArgs,
		Short: "Build packages into their workspace's build directory",
		Long: `Build every crate of each package into <workspace>/build/<package>.

Crates are found through kiln.toml or, without one, by the conventional
source names lib, main, test and bench. Up-to-date artifacts are reused.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPackages(cmd.Context(), args, app.buildPackage)
		},
	}
}

func newInstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install " + packageArgs,
		Short: "Build packages and install their library and executable",
		Long: `Build each package, then copy its library into <workspace>/lib and its
main executable into <workspace>/bin. Test and bench executables are not
installed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPackages(cmd.Context(), args, app.installPackage)
		},
	}
}

func newUninstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall " + packageArgs,
		Short: "Remove installed packages",
		Long: `Remove each package's executable from <workspace>/bin and its library
from <workspace>/lib. Uninstalling a package that is not installed prints
a warning and succeeds.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPackages(cmd.Context(), args, app.uninstallPackage)
		},
	}
}

func newCleanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clean " + packageArgs,
		Short: "Remove build directories",
		Long:  `Remove <workspace>/build/<package> so the next build starts from scratch.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPackages(cmd.Context(), args, app.cleanPackage)
		},
	}
}

// runPackages opens a session and applies op to every argument in order.
// A failed package is reported and the next one is tried; an aborting
// error stops the run. The workcache is flushed in every case.
func (a *App) runPackages(ctx context.Context, args []string, op packageOp) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	failed := 0
	for _, arg := range args {
		err := a.runPackage(ctx, s, arg, op)
		if err == nil {
			continue
		}
		fmt.Fprintf(a.stderr, "%s %s: %s\n", ErrorStyle.Render("✗"), PkgStyle.Render(arg), formatErrorForDisplay(err, a.verbose || s.cfg.UI.Verbose))
		exitErr := a.fail(s.cfg, err)
		if exitErr.Code != types.ExitFailure {
			return exitErr
		}
		failed++
	}

	if failed > 0 {
		return &ExitError{Code: types.ExitFailure, Err: fmt.Errorf("%d of %d packages failed", failed, len(args))}
	}
	return nil
}

func (a *App) runPackage(ctx context.Context, s *session, arg string, op packageOp) error {
	id, err := pkgid.Parse(arg)
	if err != nil {
		return err
	}
	ws, err := s.workspaceFor(id)
	if err != nil {
		return err
	}
	s.logger.Debug("processing package", "package", id.String(), "workspace", ws.Root())
	return op(ctx, s, ws, id)
}

func (a *App) buildPackage(ctx context.Context, s *session, ws workspace.Workspace, id pkgid.ID) error {
	res, err := s.builder.Build(ctx, ws, id)
	if err != nil {
		return err
	}
	a.printBuild(res)
	return nil
}

func (a *App) installPackage(ctx context.Context, s *session, ws workspace.Workspace, id pkgid.ID) error {
	res, err := s.builder.Install(ctx, ws, id)
	if err != nil {
		return err
	}
	a.printBuild(res.Build)
	for _, p := range res.Installed {
		fmt.Fprintf(a.stdout, "%s installed %s\n", SuccessStyle.Render("✓"), PathStyle.Render(p))
	}
	for _, p := range res.Unchanged {
		fmt.Fprintf(a.stdout, "%s unchanged %s\n", SubtitleStyle.Render("•"), PathStyle.Render(p))
	}
	return nil
}

func (a *App) uninstallPackage(_ context.Context, s *session, ws workspace.Workspace, id pkgid.ID) error {
	res, err := s.builder.Uninstall(ws, id)
	if res != nil {
		for _, p := range res.Removed {
			fmt.Fprintf(a.stdout, "%s removed %s\n", SuccessStyle.Render("✓"), PathStyle.Render(p))
		}
	}
	if err != nil {
		return err
	}
	if res.Warning {
		fmt.Fprintf(a.stderr, "%s %s is not installed in %s\n",
			WarningStyle.Render("Warning:"), PkgStyle.Render(id.String()), PathStyle.Render(ws.Root()))
		if a.verbose || s.cfg.UI.Verbose {
			renderServiceError(a.stderr, newServiceError(fmt.Errorf("%s is not installed", id), issue.NothingInstalledId, ""), glamourStyle(s.cfg.UI.ColorScheme))
		}
	}
	return nil
}

func (a *App) cleanPackage(_ context.Context, s *session, ws workspace.Workspace, id pkgid.ID) error {
	res, err := s.builder.Clean(ws, id)
	if err != nil {
		return err
	}
	if res.Removed {
		fmt.Fprintf(a.stdout, "%s cleaned %s\n", SuccessStyle.Render("✓"), PathStyle.Render(res.Dir))
	} else {
		fmt.Fprintf(a.stdout, "%s nothing to clean for %s\n", SubtitleStyle.Render("•"), PkgStyle.Render(id.String()))
	}
	return nil
}

func (a *App) printBuild(res *build.Result) {
	for _, c := range res.Crates {
		if c.Compiled {
			fmt.Fprintf(a.stdout, "%s compiled %s %s\n", SuccessStyle.Render("✓"), c.Kind, PathStyle.Render(c.Output))
		} else {
			fmt.Fprintf(a.stdout, "%s up to date %s %s\n", SubtitleStyle.Render("•"), c.Kind, PathStyle.Render(c.Output))
		}
	}
}
