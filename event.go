// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Config to observe or extend
// fetches with custom functionality, such as metrics.
type Event int

const (
	// BeforeStart identifies the event that occurs after the fetch has
	// been resolved (URL filled in, parameters serialized, options
	// merged) but before the race starts.
	//
	// When BeforeStart fires, the execution's Timeouts field holds the
	// count of consecutive timeouts preceding the fetch, and its Start
	// time is set.
	BeforeStart Event = iota
	// BeforeDispatch identifies the event that occurs immediately
	// before the HTTP request is handed to the transport.
	//
	// When BeforeDispatch fires, the execution's Request field is set
	// to the HTTP request that WILL BE sent. Handlers may modify it, for
	// example to sign the request.
	//
	// BeforeDispatch does not fire if a before-fetch hook
	// short-circuited the dispatch.
	BeforeDispatch
	// AfterResponse identifies the event that occurs when the
	// transport returns an HTTP response, before its status is checked
	// and its body decoded.
	AfterResponse
	// AfterTimeout identifies the event that occurs when the timeout
	// branch wins the race.
	//
	// When AfterTimeout fires, the execution's Err field is set to the
	// timeout error and its Timeouts counter has been incremented.
	AfterTimeout
	// AfterAbort identifies the event that occurs when the abort branch
	// wins the race.
	AfterAbort
	// AfterSettle identifies the event that occurs once the fetch has
	// settled, successfully or not, and its execution has been
	// published as the owner's last request.
	AfterSettle
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel
	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeStart",
	"BeforeDispatch",
	"AfterResponse",
	"AfterTimeout",
	"AfterAbort",
	"AfterSettle",
}

// Events returns a slice containing all events which can occur during
// a fetch, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeStart,
		BeforeDispatch,
		AfterResponse,
		AfterTimeout,
		AfterAbort,
		AfterSettle,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
