// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package params contains the parameter codec used by fetchx to turn a
caller's key/value parameters into the serialized body of an HTTP
request.

The core type is Params, an insertion-ordered mapping from string keys
to arbitrary values. Order matters: the query-string serialization
emits keys in the order they were first set, so two runs with the same
parameters always produce byte-identical request bodies.

	p := params.New("id", 1, "name", "", "tags", "a b")
	params.Encoded(p) // "id=1&tags=a%20b"

A Body is a serialized parameter set. Two kinds are supported: Query
(a URL-encoded key=value sequence, suitable both for URL query strings
and for application/x-www-form-urlencoded request bodies) and Form (a
multipart/form-data body, suitable for file uploads).

A Codec bundles the optional hooks which run around serialization: a
common-parameter source merged into every call, a Before hook which may
rewrite the merged parameters (and may block, for example to encrypt
them), and an After hook which may rewrite the serialized body.
*/
package params
