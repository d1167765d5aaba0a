// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import "errors"

// Redundant is the cause attached to the dispatch context when the
// dispatch loses the race to the timeout or abort branch. It can be
// retrieved with context.Cause.
var Redundant = errors.New("fetchx/racing: redundant dispatch")

// ErrTimeout is returned by Run when the timeout branch wins the race.
var ErrTimeout = errors.New("fetchx/racing: timed out")

// ErrAbort is returned by Run when the abort branch wins the race.
var ErrAbort = errors.New("fetchx/racing: aborted")
