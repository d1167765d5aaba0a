// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/gogama/fetchx"
)

// Exit codes of the fetchx command.
const (
	// ExitSuccess indicates the fetch succeeded.
	ExitSuccess = 0

	// ExitFetchError indicates the server responded with a bad status
	// or reported a failed export.
	ExitFetchError = 1

	// ExitValidationError indicates the response did not match the
	// schema, or had no value at the selected path.
	ExitValidationError = 2

	// ExitConfigError indicates an invalid configuration file or
	// logging setting.
	ExitConfigError = 3

	// ExitNetworkError indicates a transport error or a failing hook.
	ExitNetworkError = 4

	// ExitTimeout indicates the fetch timed out.
	ExitTimeout = 5

	// ExitUsageError indicates invalid command line usage.
	ExitUsageError = 64

	// ExitAborted indicates the fetch was aborted by an interrupt.
	ExitAborted = 130
)

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// exitCode maps an error returned by a command to an exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cerr *configError
		verr *validationError
		uerr *usageError
		xerr *fetchx.FileError
		ferr *fetchx.Error
	)
	switch {
	case errors.As(err, &cerr):
		return ExitConfigError
	case errors.As(err, &verr):
		return ExitValidationError
	case errors.As(err, &uerr):
		return ExitUsageError
	case errors.As(err, &xerr):
		return ExitFetchError
	case errors.As(err, &ferr):
		switch ferr.Kind {
		case fetchx.KindStatus:
			return ExitFetchError
		case fetchx.KindTimeout:
			return ExitTimeout
		case fetchx.KindAbort:
			return ExitAborted
		default:
			return ExitNetworkError
		}
	default:
		return ExitUsageError
	}
}
