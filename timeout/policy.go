// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/fetchx/request"
)

// A Policy decides how long a fetch may run before the timeout branch
// of its race wins.
//
// The execution passed to Timeout is the record of the fetch about to
// be dispatched. Its Timeouts field holds the number of consecutive
// fetches on the same request instance which timed out immediately
// before it.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Timeout(e *request.Execution) time.Duration
}

// DefaultTimeout is the timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of DefaultTimeout on each fetch.
var DefaultPolicy Policy = Fixed(DefaultTimeout)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that always returns d.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that lengthens the timeout after
// fetches on the same instance time out.
//
// Use Adaptive on a long-lived request instance which is reloaded when
// the remote service is sometimes slow: the usual timeout stays short,
// but once a fetch times out the next one is given longer.
//
// Parameter usual represents the timeout value the policy will return
// when the immediately preceding fetch did not time out.
//
// Parameter after contains timeout values the policy will return if
// preceding fetches timed out. After one consecutive timeout after[0]
// is returned, after two after[1], and so on. If there have been more
// consecutive timeouts than after has elements, then the last element
// of after is returned.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout, 1 second
// after one timeout, and 10 seconds after two or more timeouts in a
// row.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	i := e.Timeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
