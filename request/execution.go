// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/transient"
)

// An Execution is the working record of one fetch: the URL it resolved
// to, the options and parameters it was sent with, and what came back.
//
// An Execution is created for every fetch and filled in as the fetch
// progresses. Once the fetch settles, the record is published as the
// owner's last request, replacing the previous one in a single step, and
// is the source a later reload repeats.
//
// Hooks and event handlers may mutate URL and Options while the
// execution is being resolved (in particular from a before-fetch hook),
// and may store their own data using SetValue. The other fields should
// be treated as read-only.
type Execution struct {
	// ID identifies the request instance which owns the execution. It
	// is empty for executions owned by a bare Core.
	ID string

	// SrcURL is the URL exactly as supplied by the caller.
	SrcURL string

	// URL is the fully resolved URL, including any query string
	// appended by a GET or DELETE.
	URL string

	// Options are the effective transport options after merging the
	// instance defaults, the per-call options, and the verb's fixed
	// fields. Once dispatched, Options.Body is a []byte or nil.
	Options *Options

	// SrcParams are the call-supplied parameters, before the common
	// parameters were merged in and before any hook ran.
	SrcParams *params.Params

	// Params are the parameters as they were just before
	// serialization.
	Params *params.Params

	// Body is the serialized parameter set.
	Body *params.Body

	// Request is the HTTP request most recently dispatched for the
	// execution. It is nil if the execution was short-circuited.
	Request *http.Request

	// Response is the HTTP response received, if any.
	Response *http.Response

	// Type is the detected response type.
	Type ResponseType

	// Result is the decoded result. It is nil unless the execution
	// ended successfully.
	Result *Result

	// Err is the error the execution ended with, if any.
	Err error

	// Start is the time the execution started.
	Start time.Time

	// End is the time the execution settled. It is the zero time while
	// the execution is in flight.
	End time.Time

	// Timeouts is the number of consecutive fetches on the owning
	// request instance which ended in a timeout. Before the execution
	// settles it counts the fetches preceding this one; if this one
	// times out, it is incremented.
	Timeouts int

	data context.Context
}

// Clone returns a shallow copy of e whose Options may be modified
// without affecting e. Values set with SetValue are shared.
func (e *Execution) Clone() *Execution {
	e2 := new(Execution)
	*e2 = *e
	if e.Options != nil {
		e2.Options = e.Options.Clone()
	}
	return e2
}

// Method returns the effective HTTP method of the execution.
func (e *Execution) Method() string {
	if e.Options == nil || e.Options.Method == "" {
		return http.MethodGet
	}
	return e.Options.Method
}

// StatusCode returns the status code of the HTTP response, or 0 if
// there is no response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned, which is safe for read-only
// operations.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has settled.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err is a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows hooks and event handlers to store arbitrary data in
// the execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
