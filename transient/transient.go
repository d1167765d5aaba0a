// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The category Not means the error is not transient, or in other words
// that repeating the request after encountering this error is very
// unlikely to succeed. All other categories indicate the error has some
// prospect of going away on its own.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// Canceled indicates the request context was cancelled before the
	// request completed.
	//
	// Function Categorize() will return Canceled if the error is not a
	// Timeout and the error or any of its wrapped causes is
	// context.Canceled.
	Canceled
	// DNS indicates the host name could not be resolved.
	//
	// Function Categorize() will return DNS if the error is not a
	// Timeout and the error or any of its wrapped causes is a
	// *net.DNSError.
	DNS
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Although connection refusal may be a permanent condition, it is
	// classified as transient because it can happen if the service
	// running on the remote host is in the process of starting or
	// restarting.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	ConnReset
)

var names = [...]string{
	Not:         "not",
	Timeout:     "timeout",
	Canceled:    "canceled",
	DNS:         "dns",
	ConnRefused: "conn_refused",
	ConnReset:   "conn_reset",
}

// String returns a short lower-case name for the category, suitable
// for use as a metric label value.
func (c Category) String() string {
	if c < 0 || int(c) >= len(names) {
		return "unknown"
	}
	return names[c]
}

// Categorize returns the transience category of the given error. A nil
// error, and an error that does not fall into any other category, both
// produce the return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
