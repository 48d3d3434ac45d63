// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"kiln-cli/internal/build"
	"kiln-cli/internal/watch"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/types"
)

// watchTarget is a watched package and its source directory.
type watchTarget struct {
	id  pkgid.ID
	ws  workspace.Workspace
	dir string
}

func newWatchCommand(app *App) *cobra.Command {
	var install bool
	watchCmd := &cobra.Command{
		Use:   "watch " + packageArgs,
		Short: "Rebuild packages whenever their sources change",
		Long: `Build each package, then watch its source directory and rebuild it after
every change. Hidden files and editor backups are ignored. Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := app.buildPackage
			if install {
				op = app.installPackage
			}
			return app.watchPackages(cmd.Context(), args, op)
		},
	}
	watchCmd.Flags().BoolVar(&install, "install", false, "install after every build")
	return watchCmd
}

// watchPackages runs op for every package now and again whenever files
// under its source directory change. Failures are reported and watching
// goes on; an aborting error stops the watch.
func (a *App) watchPackages(ctx context.Context, args []string, op packageOp) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	targets := make([]watchTarget, 0, len(args))
	for _, arg := range args {
		id, err := pkgid.Parse(arg)
		if err != nil {
			return a.fail(s.cfg, err)
		}
		ws, err := s.workspaceFor(id)
		if err != nil {
			return a.fail(s.cfg, err)
		}
		dir, ok := ws.FirstSourceDir(id)
		if !ok {
			return a.fail(s.cfg, &build.PackageNotFoundError{ID: id, Workspace: ws.Root()})
		}
		targets = append(targets, watchTarget{id: id, ws: ws, dir: dir})
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	rebuild := func(ctx context.Context, batch []watchTarget) {
		for _, t := range batch {
			err := op(ctx, s, t.ws, t.id)
			if err == nil {
				continue
			}
			fmt.Fprintf(a.stderr, "%s %s: %s\n", ErrorStyle.Render("✗"), PkgStyle.Render(t.id.String()), formatErrorForDisplay(err, a.verbose || s.cfg.UI.Verbose))
			if exitErr := a.fail(s.cfg, err); exitErr.Code != types.ExitFailure {
				cancel(exitErr)
				return
			}
		}
		if err := s.builder.Flush(); err != nil {
			s.logger.Warn("failed to save workcache", "error", err)
		}
	}

	rebuild(ctx, targets)
	if err := abortCause(ctx); err != nil {
		return err
	}

	roots := make([]string, len(targets))
	for i, t := range targets {
		roots[i] = t.dir
	}
	w, err := watch.New(watch.Config{
		Roots:  roots,
		Logger: s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			affected := affectedTargets(targets, changed)
			s.logger.Debug("sources changed", "files", changed, "packages", len(affected))
			if len(affected) > 0 {
				fmt.Fprintf(a.stdout, "%s %d file(s) changed\n", SubtitleStyle.Render("•"), len(changed))
				rebuild(ctx, affected)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s watching %d package(s), press Ctrl+C to stop\n", TitleStyle.Render("kiln"), len(targets))
	if err := w.Run(ctx); err != nil {
		return err
	}
	return abortCause(ctx)
}

// abortCause returns the ExitError that canceled ctx, if any.
func abortCause(ctx context.Context) error {
	var exitErr *ExitError
	if errors.As(context.Cause(ctx), &exitErr) {
		return exitErr
	}
	return nil
}

// affectedTargets returns the targets with a changed file under their
// source directory, in target order.
func affectedTargets(targets []watchTarget, changed []string) []watchTarget {
	var out []watchTarget
	for _, t := range targets {
		prefix := t.dir + string(filepath.Separator)
		if slices.ContainsFunc(changed, func(p string) bool { return strings.HasPrefix(p, prefix) }) {
			out = append(out, t)
		}
	}
	return out
}
