// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError annotates a failure with the operation that failed, the
// file or package it concerned and what the user can try next. Create one
// with Wrap.
type ActionableError struct {
	// Operation is a verb phrase such as "load configuration".
	Operation string
	// Resource is the path or package involved, if any.
	Resource    string
	Suggestions []string
	Cause       error
}

// Wrap annotates cause. It returns nil when cause is nil, so it can wrap a
// call's result directly:
//
//	return issue.Wrap(err, "read package manifest", path, "Check the TOML syntax")
func Wrap(cause error, operation, resource string, suggestions ...string) error {
	if cause == nil {
		return nil
	}
	return &ActionableError{
		Operation:   operation,
		Resource:    resource,
		Suggestions: suggestions,
		Cause:       cause,
	}
}

// Error renders "failed to <operation>: <resource>: <cause>".
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the error followed by one "→" line per suggestion. verbose
// appends the numbered chain of wrapped causes.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  → ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nCaused by:")
		for i, cause := range causeChain(e.Cause) {
			fmt.Fprintf(&msg, "\n  %d. %s", i+1, cause.Error())
		}
	}
	return msg.String()
}

// FormatError renders err for the terminal: the outermost ActionableError in
// its chain through Format, anything else through Error.
func FormatError(err error, verbose bool) string {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// causeChain lists err and everything it wraps, depth first. Errors joining
// several causes contribute each of them.
func causeChain(err error) []error {
	var chain []error
	var walk func(error)
	walk = func(err error) {
		for err != nil {
			chain = append(chain, err)
			if joined, ok := err.(interface{ Unwrap() []error }); ok {
				for _, inner := range joined.Unwrap() {
					walk(inner)
				}
				return
			}
			err = errors.Unwrap(err)
		}
	}
	walk(err)
	return chain
}
