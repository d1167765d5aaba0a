// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gogama/fetchx/params"
	"golang.org/x/net/http/httpguts"
)

// Options contains the transport-native options of a request: the
// fields which end up on the lower-level http.Request rather than
// steering fetchx itself.
//
// Options are layered. A request's effective options are the merge,
// using Merge, of the instance defaults, the per-call options, and the
// fields fixed by the verb being invoked (for example the method of a
// GET).
type Options struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// Header contains the request header fields to be sent.
	Header http.Header

	// Body, if not nil, is the request body to send. It may be a
	// string, []byte, io.Reader, io.ReadCloser, or *params.Body. A
	// non-nil Body in the per-call options replaces the serialized
	// parameters of a POST or PUT.
	Body interface{}

	// BodyFunc, if not nil, receives the serialized parameters of a
	// POST or PUT and returns the body to actually send, which may be
	// any value accepted by Body. Use it for custom encodings, such as
	// JSON.
	BodyFunc func(b *params.Body) (interface{}, error)

	// Close stipulates whether to close the connection after sending
	// the request and reading the response.
	//
	// Merge ORs Close across layers: once an instance or factory default
	// sets it, a per-call Options cannot turn it off.
	Close bool

	// Host optionally overrides the Host header to send.
	Host string
}

// Clone returns a copy of o whose Header may be modified without
// affecting o. Cloning a nil Options returns an empty Options.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	o2 := new(Options)
	*o2 = *o
	o2.Header = o.Header.Clone()
	return o2
}

// Merge merges options layers from left to right and returns the
// result as a new Options. A later layer wins on collision:
//
// • a non-empty Method, Host, or a non-nil Body or BodyFunc replaces
// the earlier value;
//
// • Close is true if any layer sets it; and
//
// • headers are merged key by key, with every value of a key in a later
// layer replacing all values of the same key in an earlier layer.
//
// Nil layers are skipped. None of the layers is modified.
func Merge(layers ...*Options) *Options {
	m := &Options{}
	for _, o := range layers {
		if o == nil {
			continue
		}
		if o.Method != "" {
			m.Method = o.Method
		}
		for k, vs := range o.Header {
			if m.Header == nil {
				m.Header = make(http.Header)
			}
			m.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
		if o.Body != nil {
			m.Body = o.Body
		}
		if o.BodyFunc != nil {
			m.BodyFunc = o.BodyFunc
		}
		m.Close = m.Close || o.Close
		if o.Host != "" {
			m.Host = o.Host
		}
	}
	return m
}

// Buffer converts o.Body to a []byte in place, so that the options can
// be sent more than once. A *params.Body keeps its content type: if the
// body is a multipart form and no Content-Type header is set, the
// form's content type (with its boundary) is added to the header.
func (o *Options) Buffer() error {
	if pb, ok := o.Body.(*params.Body); ok && pb != nil && pb.ContentType != "" {
		if o.Header.Get("Content-Type") == "" {
			if o.Header == nil {
				o.Header = make(http.Header)
			}
			o.Header.Set("Content-Type", pb.ContentType)
		}
	}
	b, err := BodyBytes(o.Body)
	if err != nil {
		return err
	}
	if b == nil {
		o.Body = nil
	} else {
		o.Body = b
	}
	return nil
}

// ToRequest creates an HTTP request for url from the options. The
// context of the new request is set to ctx, which may not be nil.
//
// The body is buffered first, so o.Body is always a []byte or nil
// after ToRequest returns without error.
func (o *Options) ToRequest(ctx context.Context, url string) (*http.Request, error) {
	method := o.Method
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("fetchx/request: invalid method %q", method)
	}
	if err := o.Buffer(); err != nil {
		return nil, err
	}
	var body io.Reader
	var b []byte
	if o.Body != nil {
		b = o.Body.([]byte)
		body = bytes.NewReader(b)
	}
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		r.Body = http.NoBody
		r.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		r.ContentLength = 0
	}
	r.Header = o.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Close = o.Close
	if o.Host != "" {
		r.Host = o.Host
	}
	return r, nil
}

func validMethod(method string) bool {
	return len(method) > 0 && strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
