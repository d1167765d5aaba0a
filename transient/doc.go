// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from HTTP request dispatch by
// their underlying cause. This is handy for bucketing error metrics
// and for labelling log records.
//
// Package transient depends only on the standard library, so it
// doesn't bring any significant dependencies when imported as a
// standalone package.
package transient
