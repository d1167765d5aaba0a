// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"net/http"

	"github.com/gogama/fetchx/transient"
)

// A Kind classifies a failed fetch.
type Kind string

const (
	// KindStatus means the server responded with a status other than
	// 200.
	KindStatus Kind = "status"
	// KindTimeout means the timeout elapsed before the fetch settled.
	KindTimeout Kind = "timeout"
	// KindAbort means the request instance was aborted before the fetch
	// settled.
	KindAbort Kind = "abort"
	// KindErr means any other failure, such as a network error or an
	// error returned by a hook.
	KindErr Kind = "err"
)

// FallbackStatusMsg is the message of a status error whose status code
// has no entry in Config.StatusMsg.
const FallbackStatusMsg = "network request failed"

// Error is the error returned by a failed fetch.
//
// Every error returned by a Request, and by the Factory verbs, is an
// *Error unless a Reject hook substituted a different one. A bare Core
// returns an *Error of kind KindStatus for bad statuses, and other
// errors unchanged.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Status is the response status code, as a decimal string. It is
	// only set for KindStatus.
	Status string

	// Message is a human-readable description of the failure: the
	// configured status, timeout, or abort message, or the message of
	// the underlying error.
	Message string

	// Cause is the underlying error. It is nil for KindStatus.
	Cause error

	// Response is the HTTP response of a KindStatus error. Its body has
	// been buffered, so it can still be read.
	Response *http.Response

	// Request is the request instance which issued the fetch. It is
	// nil for errors returned by a bare Core.
	Request *Request

	// URL is the URL as originally supplied to the failed call.
	URL string
}

// Error returns the kind and the message of the error, and the status
// for a KindStatus error.
func (err *Error) Error() string {
	if err.Kind == KindStatus {
		return "fetchx: status " + err.Status + ": " + err.Message
	}
	return "fetchx: " + string(err.Kind) + ": " + err.Message
}

// Unwrap returns Cause.
func (err *Error) Unwrap() error {
	return err.Cause
}

// Timeout reports whether the error is a timeout: either the fetch's
// own timeout elapsed, or the underlying error is a timeout.
func (err *Error) Timeout() bool {
	return err.Kind == KindTimeout || transient.Categorize(err.Cause) == transient.Timeout
}

type raceError struct {
	msg      string
	sentinel error
}

func (err *raceError) Error() string {
	return err.msg
}

func (err *raceError) Unwrap() error {
	return err.sentinel
}
