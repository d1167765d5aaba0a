// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"context"
	"time"
)

// DefaultPollInterval is the abort poll interval used when a Race does
// not specify one.
const DefaultPollInterval = 300 * time.Millisecond

// A Race describes the timeout and abort branches which race against a
// dispatch. The zero value races against nothing.
type Race struct {
	// Timeout is the time after which the timeout branch wins. A value
	// of zero or less disables the timeout branch.
	Timeout time.Duration

	// PollInterval is the interval at which Aborted is polled. A value
	// of zero or less means DefaultPollInterval.
	PollInterval time.Duration

	// Aborted reports whether the race should be abandoned. If nil, the
	// abort branch is disabled.
	Aborted func() bool
}

type outcome[T any] struct {
	v   T
	err error
}

// Run runs f in a race against the branches described by r and returns
// the outcome of the first branch to settle:
//
// • the value and error returned by f;
//
// • ErrTimeout if the timeout elapses first;
//
// • ErrAbort if Aborted reports true on a poll tick first; or
//
// • ctx.Err() if ctx is done first.
//
// If Aborted already reports true when Run is called, ErrAbort is
// returned without calling f.
//
// The context passed to f is derived from ctx. It is cancelled with the
// cause Redundant if f loses, and cancelled in any case by the time Run
// returns, so f must finish any use of it (such as reading a response
// body) before returning.
func Run[T any](ctx context.Context, r Race, f func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if r.Aborted != nil && r.Aborted() {
		return zero, ErrAbort
	}

	dctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan outcome[T], 1)
	go func() {
		v, err := f(dctx)
		done <- outcome[T]{v, err}
	}()

	var timeout <-chan time.Time
	if r.Timeout > 0 {
		timer := time.NewTimer(r.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var poll <-chan time.Time
	if r.Aborted != nil {
		d := r.PollInterval
		if d <= 0 {
			d = DefaultPollInterval
		}
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		poll = ticker.C
	}

	for {
		select {
		case o := <-done:
			return o.v, o.err
		case <-timeout:
			cancel(Redundant)
			return zero, ErrTimeout
		case <-poll:
			if r.Aborted() {
				cancel(Redundant)
				return zero, ErrAbort
			}
		case <-ctx.Done():
			cancel(Redundant)
			return zero, ctx.Err()
		}
	}
}
