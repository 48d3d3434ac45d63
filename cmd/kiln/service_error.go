// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"kiln-cli/internal/build"
	"kiln-cli/internal/compiler"
	"kiln-cli/internal/issue"
	"kiln-cli/internal/pkgsrc"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
	"kiln-cli/pkg/types"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before the issue catalog entry.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints any styled message first, then the optional
// issue help section rendered with the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// formatErrorForDisplay renders err with any suggestions attached to it.
// verbose adds the chain of underlying causes.
func formatErrorForDisplay(err error, verbose bool) string {
	return issue.FormatError(err, verbose)
}

// classifyError maps a package operation error to its catalog entry and the
// exit code it warrants. Unknown errors map to (0, ExitFailure).
func classifyError(err error) (issue.Id, types.ExitCode) {
	switch {
	case errors.Is(err, build.ErrMissingArtifact):
		return issue.MissingArtifactId, types.ExitAborted
	case errors.Is(err, workspace.ErrEmptySearchPath):
		return issue.EmptySearchPathId, types.ExitConfig
	case errors.Is(err, pkgid.ErrMalformedIdentifier):
		return issue.MalformedIdentifierId, types.ExitFailure
	case errors.Is(err, build.ErrPackageNotFound):
		return issue.PackageNotFoundId, types.ExitFailure
	case errors.Is(err, workspace.ErrArtifactNotFound):
		return issue.DependencyNotFoundId, types.ExitFailure
	case errors.Is(err, pkgsrc.ErrInvalidManifest), errors.Is(err, pkgsrc.ErrNoCrates):
		return issue.InvalidManifestId, types.ExitFailure
	case errors.Is(err, compiler.ErrShellNotFound):
		return issue.ShellNotFoundId, types.ExitFailure
	case errors.Is(err, build.ErrStepFailed):
		return issue.BuildFailedId, types.ExitFailure
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId, types.ExitFailure
	default:
		return 0, types.ExitFailure
	}
}
