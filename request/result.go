// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// A ResponseType identifies how a response body was decoded.
type ResponseType string

const (
	// JSON means the body was parsed as JSON.
	JSON ResponseType = "json"
	// Text means the body was read as text.
	Text ResponseType = "text"
	// Blob means the body was read as opaque binary data.
	Blob ResponseType = "blob"
	// Raw means the body was not decoded. It is left in the response
	// for the caller to read.
	Raw ResponseType = "raw"
	// Value means no response was decoded: the result is a value
	// supplied by a hook which short-circuited dispatch.
	Value ResponseType = "value"
)

// TypeOf returns the response type for a Content-Type header value: a
// content type containing "json" is JSON, one containing "text" is
// Text, one containing "image" is Blob, and anything else is Raw.
func TypeOf(contentType string) ResponseType {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return JSON
	case strings.Contains(ct, "text"):
		return Text
	case strings.Contains(ct, "image"):
		return Blob
	default:
		return Raw
	}
}

// A Result is a decoded response.
type Result struct {
	// Type is how the response was decoded.
	Type ResponseType

	// Data is the complete response body. It is nil for Raw and Value
	// results.
	Data []byte

	// JSON is the parsed body of a JSON result.
	JSON interface{}

	// Value is the value supplied by a short-circuiting hook.
	Value interface{}

	// Response is the HTTP response the result was decoded from. It is
	// nil for Value results. The body of the response has already been
	// consumed unless Type is Raw, in which case it holds an in-memory
	// copy of the body.
	Response *http.Response
}

// ValueResult wraps a value as a Result of type Value.
func ValueResult(v interface{}) *Result {
	return &Result{Type: Value, Value: v}
}

// Text returns Data as a string.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Data)
}

// Unmarshal parses Data as JSON into v.
func (r *Result) Unmarshal(v interface{}) error {
	if r == nil || r.Data == nil {
		return errors.New("fetchx/request: no data to unmarshal")
	}
	return json.Unmarshal(r.Data, v)
}

// Get searches Data for a gjson path, such as "data.items.0.name".
func (r *Result) Get(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Data, path)
}

// Decode decodes resp according to its Content-Type, as classified by
// TypeOf. The body is always read and closed. For a Raw result it is
// replaced by an in-memory copy which remains readable once the request
// context is gone.
func Decode(resp *http.Response) (*Result, error) {
	t := TypeOf(resp.Header.Get("Content-Type"))
	r := &Result{Type: t, Response: resp}
	if t == Raw {
		if err := Buffer(resp); err != nil {
			return nil, err
		}
		return r, nil
	}

	b, err := BodyBytes(resp.Body)
	if err != nil {
		return nil, err
	}
	r.Data = b
	if t == JSON {
		if err = json.Unmarshal(b, &r.JSON); err != nil {
			return nil, fmt.Errorf("fetchx/request: invalid JSON body: %w", err)
		}
	}
	return r, nil
}

// Buffer reads and closes the body of resp, replacing it with an
// in-memory copy so it can still be read by the caller. A nil body is
// left alone.
func Buffer(resp *http.Response) error {
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		return nil
	}
	b, err := BodyBytes(resp.Body)
	if err != nil {
		resp.Body = http.NoBody
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return nil
}
