// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package params

import (
	"context"
	"fmt"
)

// A Codec serializes call-supplied parameters, applying the optional
// common-parameter merge and the Before and After hooks. The zero value
// serializes parameters without any hooks.
type Codec struct {
	// Common, if not nil, returns the common parameters to merge into
	// every call. It receives the call-supplied parameters, which it
	// must not modify. Call-supplied values win on key collision.
	Common func(call *Params) *Params

	// Before, if not nil, may transform the merged parameters before
	// they are serialized. It may block (for example while encrypting
	// the parameters) and should return promptly once ctx is done. A
	// nil result with a nil error keeps the merged parameters.
	Before func(ctx context.Context, p *Params) (*Params, error)

	// After, if not nil, may transform the serialized body. It must not
	// block. A nil result keeps the serialized body.
	After func(b *Body) *Body
}

// Serialize merges, transforms, and serializes call. It returns the
// parameters as they were just before serialization along with the
// serialized body.
func (c *Codec) Serialize(ctx context.Context, call *Params, kind Kind) (*Params, *Body, error) {
	p, err := c.Prepare(ctx, call)
	if err != nil {
		return nil, nil, err
	}

	var b *Body
	switch kind {
	case Query:
		b = QueryBody(p)
	case Form:
		b, err = Multipart(p)
		if err != nil {
			return p, nil, err
		}
	default:
		return p, nil, fmt.Errorf("fetchx/params: unknown body kind %v", kind)
	}

	if c.After != nil {
		if b2 := c.After(b); b2 != nil {
			b = b2
		}
	}

	return p, b, nil
}

// Prepare merges the common parameters into call and runs the Before
// hook. The result is always a fresh Params; call is not modified.
func (c *Codec) Prepare(ctx context.Context, call *Params) (*Params, error) {
	var common *Params
	if c.Common != nil {
		common = c.Common(call)
	}
	p := Merge(common, call)

	if c.Before == nil {
		return p, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p2, err := c.Before(ctx, p)
	if err != nil {
		return nil, err
	}
	if p2 != nil {
		p = p2
	}
	return p, nil
}
