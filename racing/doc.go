// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package racing runs a dispatch in a race against a timeout and a
cooperative abort.

A race has up to three branches:

• The dispatch itself, a function run on its own goroutine.

• A timeout branch, which wins once the race's Timeout elapses.

• An abort branch, active only when the race has an Aborted function.
  The function is polled every PollInterval and the branch wins the
  first time it reports true. Abort latency is therefore bounded by the
  poll interval rather than being instantaneous.

Whichever branch settles first decides the outcome. The timer and the
poll ticker are always stopped on settlement, so nothing fires after
Run returns. When the dispatch loses, its context is cancelled with the
cause Redundant so that the in-flight HTTP request is abandoned and its
goroutine can exit.

The dispatch goroutine may still be running when Run returns, so any
value it shares with the caller must be synchronized. The package tests
are meant to be run with the race detector:

	go test -race ./...
*/
package racing
