// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"kiln-cli/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Shell is a Compiler that runs a shell command template once per request.
type Shell struct {
	// Runtime selects the embedded interpreter or the host shell.
	Runtime Runtime
	// Command is the script run for every request. Empty means DefaultCommand.
	Command string
	// Stdout and Stderr receive the command's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

var _ Compiler = (*Shell)(nil)

// NewShell returns a Shell for the given runtime and command, validating the
// runtime and the command's syntax up front.
func NewShell(rt Runtime, command string) (*Shell, error) {
	if rt == "" {
		rt = RuntimeVirtual
	}
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	s := &Shell{Runtime: rt, Command: command}
	if _, err := s.parse(); err != nil {
		return nil, err
	}
	return s, nil
}

// Compile runs the command for req. A non-zero exit is reported as a
// *CompileError; failures to start the command are returned as-is.
func (s *Shell) Compile(ctx context.Context, req Request) error {
	logger := s.logger()
	logger.Debug("running compile step", "runtime", s.Runtime, "package", req.Package.String(), "kind", req.Kind, "source", req.Source, "output", req.Output)

	var stderr bytes.Buffer
	stdout := s.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	errOut := io.Writer(&stderr)
	if s.Stderr != nil {
		errOut = io.MultiWriter(s.Stderr, &stderr)
	}

	var (
		code types.ExitCode
		err  error
	)
	switch s.Runtime {
	case RuntimeNative:
		code, err = s.runNative(ctx, req, stdout, errOut)
	case RuntimeVirtual, "":
		code, err = s.runVirtual(ctx, req, stdout, errOut)
	default:
		return &InvalidRuntimeError{Value: s.Runtime}
	}
	if err != nil {
		return err
	}
	if !code.IsSuccess() {
		return &CompileError{Source: req.Source, ExitCode: code, Stderr: stderr.String()}
	}
	return nil
}

func (s *Shell) runVirtual(ctx context.Context, req Request, stdout, stderr io.Writer) (types.ExitCode, error) {
	prog, err := s.parse()
	if err != nil {
		return types.ExitFailure, err
	}

	runner, err := interp.New(
		interp.Dir(req.SourceDir),
		interp.Env(expand.ListEnviron(environ(os.Environ(), req.Env())...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return types.ExitCode(exitStatus), nil
		}
		return types.ExitFailure, fmt.Errorf("compile script failed: %w", err)
	}
	return types.ExitOK, nil
}

func (s *Shell) runNative(ctx context.Context, req Request, stdout, stderr io.Writer) (types.ExitCode, error) {
	shell, err := exec.LookPath("sh")
	if err != nil {
		return types.ExitFailure, fmt.Errorf("native compiler runtime needs a POSIX sh: %w: %w", ErrShellNotFound, err)
	}

	cmd := exec.CommandContext(ctx, shell, "-c", s.command())
	cmd.Dir = req.SourceDir
	cmd.Env = environ(os.Environ(), req.Env())
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.ExitCode(exitErr.ExitCode()), nil
		}
		return types.ExitFailure, fmt.Errorf("failed to execute compile command: %w", err)
	}
	return types.ExitOK, nil
}

func (s *Shell) parse() (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(s.command()), "compile")
	if err != nil {
		return nil, fmt.Errorf("compile command syntax error: %w", err)
	}
	return prog, nil
}

func (s *Shell) command() string {
	if strings.TrimSpace(s.Command) == "" {
		return DefaultCommand
	}
	return s.Command
}

func (s *Shell) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
