// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"kiln-cli/internal/build"
	"kiln-cli/internal/compiler"
	"kiln-cli/internal/config"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/workcache"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and
	// delegates package operations to a session it opens.
	App struct {
		Config    config.Provider
		Compiler  compiler.Compiler
		LookupEnv func(string) (string, bool)
		stdout    io.Writer
		stderr    io.Writer

		// setDefaultLogger installs the session logger as slog's default.
		setDefaultLogger bool

		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		// Compiler replaces the shell compiler built from the config.
		Compiler  compiler.Compiler
		LookupEnv func(string) (string, bool)
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// session is the state of one command invocation: the effective config,
	// the resolved search path and a Builder over the opened workcache.
	session struct {
		cfg        *config.Config
		searchPath workspace.SearchPath
		builder    *build.Builder
		logger     *slog.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.LookupEnv == nil {
		deps.LookupEnv = os.LookupEnv
	}

	return &App{
		Config:    deps.Config,
		Compiler:  deps.Compiler,
		LookupEnv: deps.LookupEnv,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadConfig loads the effective configuration, honoring --config.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configPath)})
	if err != nil {
		return nil, a.configError(err)
	}
	return cfg, nil
}

// configError renders err, its suggestions and the config issue, and exits
// with ExitConfig.
func (a *App) configError(err error) error {
	styled := fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))
	svcErr := newServiceError(err, issue.ConfigLoadFailedId, styled)
	renderServiceError(a.stderr, svcErr, glamourStyle(config.ColorSchemeAuto))
	return &ExitError{Code: types.ExitConfig, Err: svcErr}
}

// openSession loads the config, sets up logging and styles, resolves the
// search path and opens the workcache. Callers must close the session.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	applyColorScheme(cfg.UI.ColorScheme)
	logger := a.newLogger(a.verbose || cfg.UI.Verbose)

	sp, err := workspace.ResolveSearchPath(a.LookupEnv, cfg.SearchPathStrings())
	if err != nil {
		return nil, a.fail(cfg, err)
	}

	getenv := func(key string) string {
		v, _ := a.LookupEnv(key)
		return v
	}
	cacheDir, err := workcache.DefaultDirWith(getenv, cfg.CacheDir.String())
	if err != nil {
		return nil, a.fail(cfg, err)
	}
	cache := workcache.Open(workcache.DatabasePath(cacheDir), logger)

	comp := a.Compiler
	if comp == nil {
		shell, err := compiler.NewShell(compiler.Runtime(cfg.Compiler.Runtime), cfg.Compiler.Command)
		if err != nil {
			return nil, a.configError(err)
		}
		shell.Stdout = a.stdout
		shell.Stderr = a.stderr
		shell.Logger = logger
		comp = shell
	}

	logger.Debug("session opened", "search_path", sp.Strings(), "cache", cache.Path())
	return &session{
		cfg:        cfg,
		searchPath: sp,
		logger:     logger,
		builder: &build.Builder{
			Cache:      cache,
			Compiler:   comp,
			Logger:     logger,
			SearchPath: sp,
		},
	}, nil
}

// close flushes the workcache. A flush failure is logged, not returned, so
// it never hides the command's own outcome.
func (s *session) close() {
	if err := s.builder.Flush(); err != nil {
		s.logger.Error("failed to save workcache", "path", s.builder.Cache.Path(), "error", err)
	}
}

// workspaceFor returns the first workspace whose sources hold id, or the
// default workspace when none does.
func (s *session) workspaceFor(id pkgid.ID) (workspace.Workspace, error) {
	if parents := s.searchPath.ParentWorkspaces(id); len(parents) > 0 {
		return parents[0], nil
	}
	return s.searchPath.Default()
}

// newLogger returns a slog logger backed by charmbracelet/log on stderr.
func (a *App) newLogger(verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	logger := slog.New(handler)
	if a.setDefaultLogger {
		slog.SetDefault(logger)
	}
	return logger
}

// fail renders err's catalog entry and wraps it with the matching exit code.
func (a *App) fail(cfg *config.Config, err error) *ExitError {
	id, code := classifyError(err)
	if id != 0 {
		renderServiceError(a.stderr, newServiceError(err, id, ""), glamourStyle(cfg.UI.ColorScheme))
	}
	return &ExitError{Code: code, Err: err}
}
