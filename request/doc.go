// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the types shared by every layer of a fetch:
Options (the transport-native options of a request), Execution (the
working record of one fetch), and Result (a decoded response).

Options are layered. The effective options of a fetch are merged from
the instance defaults, the per-call options, and the fields the verb
fixes, in that order:

	o := request.Merge(defaults, perCall, &request.Options{Method: "PUT"})
	r, err := o.ToRequest(ctx, "https://example.com/users/1")

An Execution is handed to hooks, timeout policies, and event handlers
while a fetch is in progress, and becomes the owner's last request once
the fetch settles. You will typically not allocate Execution instances
yourself.

A Result is produced by Decode, which classifies the response by its
Content-Type:

	res, err := request.Decode(resp)
	...
	name := res.Get("data.user.name").String()
*/
package request
