// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"

	"github.com/gogama/fetchx/params"
)

const badBodyTypeMsg = "fetchx/request: invalid type (for body use nil, " +
	"string, []byte, *params.Body, io.Reader or io.ReadCloser)"

// BodyBytes converts a generic body value to a byte slice so the body
// can be sent, and re-sent on reload.
//
// The conversion logic is:
//
// • nil gives a nil byte slice;
//
// • a []byte is returned as is, and a string is converted;
//
// • a *params.Body gives its serialized data;
//
// • an io.Reader is read to the end, and closed if it is an
// io.ReadCloser. If reading or closing fails, the error is returned
// with a nil byte slice.
//
// Any other type gives a nil byte slice and an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case *params.Body:
		if x == nil {
			return nil, nil
		}
		return x.Data, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}
