// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/racing"
	"github.com/gogama/fetchx/request"
	"github.com/google/uuid"
)

// A Request is a request instance with a timeout and cooperative
// cancellation. It wraps a Core and races every dispatch against a
// timeout and, unless Config.CanAbort is false, against an abort which
// is polled every Config.PollInterval.
//
// Every error a Request returns is an *Error, augmented with the
// instance and the URL of the failed call, unless a Reject hook
// substituted a different error.
//
// A Request is safe for concurrent use, but it is designed for one
// fetch at a time: each settled fetch replaces the last request, and
// Abort abandons every fetch in flight.
type Request struct {
	core *Core
	id   string

	aborted atomic.Bool

	mu       sync.Mutex
	pending  *request.Execution
	timeouts int
	onSettle func(*Request)
}

// NewRequest returns a Request configured by a copy of cfg. A nil cfg
// is the same as a zero Config.
func NewRequest(cfg *Config) *Request {
	return &Request{
		core: NewCore(cfg),
		id:   uuid.NewString(),
	}
}

// ID returns the unique identifier of the instance.
func (r *Request) ID() string {
	return r.id
}

// Config returns a copy of the instance's configuration.
func (r *Request) Config() *Config {
	return r.core.Config()
}

// ResolveURL resolves url against the configured host, as
// Core.ResolveURL does.
func (r *Request) ResolveURL(url string) string {
	return r.core.ResolveURL(url)
}

// Last returns the record of the most recently settled fetch, or nil if
// no fetch has settled yet. The record must not be modified.
func (r *Request) Last() *request.Execution {
	return r.core.Last()
}

// Fetch behaves as Core.Fetch, raced against the timeout and abort.
func (r *Request) Fetch(ctx context.Context, url string, opts *request.Options) (*request.Result, error) {
	return r.execute(ctx, url, r.core.preparer(verbFetch, url, nil, opts))
}

// Get behaves as Core.Get, raced against the timeout and abort.
func (r *Request) Get(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return r.execute(ctx, url, r.core.preparer(verbGet, url, p, opts))
}

// Post behaves as Core.Post, raced against the timeout and abort.
func (r *Request) Post(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return r.execute(ctx, url, r.core.preparer(verbPost, url, p, opts))
}

// Put behaves as Core.Put, raced against the timeout and abort.
func (r *Request) Put(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return r.execute(ctx, url, r.core.preparer(verbPut, url, p, opts))
}

// Delete behaves as Core.Delete, raced against the timeout and abort.
func (r *Request) Delete(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return r.execute(ctx, url, r.core.preparer(verbDelete, url, p, opts))
}

// Form behaves as Core.Form, raced against the timeout and abort.
func (r *Request) Form(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return r.execute(ctx, url, r.core.preparer(verbForm, url, p, opts))
}

// Reload repeats the most recent request with a fresh race. It fails
// with kind KindErr, wrapping ErrNoRequest, if no fetch has settled yet.
func (r *Request) Reload(ctx context.Context) (*request.Result, error) {
	return r.execute(ctx, "", r.core.reloader())
}

// CloseIdleConnections closes idle connections of the transport, if it
// supports doing so.
func (r *Request) CloseIdleConnections() {
	r.core.CloseIdleConnections()
}

// Abort abandons the fetch in flight, if any. It is a no-op when
// Config.CanAbort is false.
//
// The fetch notices the abort on its next poll, so it fails with kind
// KindAbort within one poll interval. The abort is permanent: every
// later fetch on the instance fails with kind KindAbort without being
// dispatched.
func (r *Request) Abort() {
	if !r.core.cfg.canAbort() {
		return
	}
	r.aborted.Store(true)
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}

// Aborted reports whether Abort has taken effect on the instance.
func (r *Request) Aborted() bool {
	return r.aborted.Load()
}

// Pending reports whether a fetch is in flight and has not been
// abandoned by Abort.
func (r *Request) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

func (r *Request) execute(ctx context.Context, url string, prep preparer) (*request.Result, error) {
	cfg := r.core.cfg
	start := time.Now()
	e, err := prep(ctx)
	if err != nil {
		e = &request.Execution{SrcURL: url, Start: start}
		return r.settle(ctx, e, err, false)
	}
	e.ID = r.id
	e.Start = start

	r.mu.Lock()
	e.Timeouts = r.timeouts
	r.pending = e
	r.mu.Unlock()

	cfg.Handlers.run(BeforeStart, e)
	cfg.logger().DebugContext(ctx, "fetch started",
		"request_id", r.id,
		"method", e.Method(),
		"url", e.URL,
	)

	race := racing.Race{Timeout: cfg.timeoutPolicy().Timeout(e)}
	if cfg.canAbort() {
		race.PollInterval = cfg.pollInterval()
		race.Aborted = r.Aborted
	}
	// The dispatch works on its own copy, which settle never touches
	// unless the dispatch wins.
	d := e.Clone()
	won, err := racing.Run(ctx, race, func(dctx context.Context) (*request.Execution, error) {
		r.core.dispatch(dctx, d)
		return d, d.Err
	})
	if won != nil {
		e = won
	}
	return r.settle(ctx, e, err, true)
}

// settle applies the resolve and reject hooks, records the outcome in
// e, and publishes it if it was dispatched.
func (r *Request) settle(ctx context.Context, e *request.Execution, err error, dispatched bool) (*request.Result, error) {
	cfg := r.core.cfg
	e.ID = r.id

	if err == nil && cfg.Resolve != nil {
		res, rerr := cfg.Resolve(ctx, e.Result, e.SrcURL)
		if rerr != nil {
			err = rerr
		} else {
			e.Result = res
		}
	}

	var ferr *Error
	if err != nil {
		ferr = r.normalize(err, e.SrcURL)
		e.Result = nil
		e.Err = ferr
		if cfg.Reject != nil {
			if err2 := cfg.Reject(ferr, e.SrcURL); err2 != nil {
				e.Err = err2
			}
		}
	}

	r.mu.Lock()
	if dispatched {
		if ferr != nil && ferr.Kind == KindTimeout {
			r.timeouts++
		} else {
			r.timeouts = 0
		}
		e.Timeouts = r.timeouts
	}
	r.pending = nil
	onSettle := r.onSettle
	r.mu.Unlock()

	e.End = time.Now()
	if ferr != nil {
		switch ferr.Kind {
		case KindTimeout:
			cfg.Handlers.run(AfterTimeout, e)
		case KindAbort:
			cfg.Handlers.run(AfterAbort, e)
		}
	}
	if dispatched {
		r.core.publish(e)
	}
	cfg.Handlers.run(AfterSettle, e)
	logSettled(ctx, cfg.logger(), e)
	if onSettle != nil {
		onSettle(r)
	}

	if e.Err != nil {
		return nil, e.Err
	}
	return e.Result, nil
}

// normalize converts any failure into an *Error tied to the instance
// and to url.
func (r *Request) normalize(err error, url string) *Error {
	cfg := r.core.cfg
	var ferr *Error
	switch {
	case errors.As(err, &ferr):
	case err == racing.ErrTimeout:
		msg := cfg.timeoutMsg()
		ferr = &Error{Kind: KindTimeout, Message: msg, Cause: &raceError{msg, racing.ErrTimeout}}
	case err == racing.ErrAbort:
		msg := cfg.abortMsg()
		ferr = &Error{Kind: KindAbort, Message: msg, Cause: &raceError{msg, racing.ErrAbort}}
	default:
		ferr = &Error{Kind: KindErr, Message: err.Error(), Cause: err}
	}
	ferr.Request = r
	ferr.URL = url
	return ferr
}
