// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	testCases := []struct {
		contentType string
		expected    ResponseType
	}{
		{"application/json", JSON},
		{"application/problem+json; charset=utf-8", JSON},
		{"text/plain", Text},
		{"TEXT/HTML", Text},
		{"image/png", Blob},
		{"application/octet-stream", Raw},
		{"", Raw},
	}
	for _, testCase := range testCases {
		t.Run(testCase.contentType, func(t *testing.T) {
			assert.Equal(t, testCase.expected, TypeOf(testCase.contentType))
		})
	}
}

func newResponse(contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": {contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDecode(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		resp := newResponse("application/json", `{"data":{"id":7,"tags":["a","b"]}}`)
		r, err := Decode(resp)
		require.NoError(t, err)
		assert.Equal(t, JSON, r.Type)
		assert.Same(t, resp, r.Response)
		assert.Equal(t, map[string]interface{}{
			"data": map[string]interface{}{
				"id":   float64(7),
				"tags": []interface{}{"a", "b"},
			},
		}, r.JSON)
		assert.Equal(t, int64(7), r.Get("data.id").Int())
		assert.Equal(t, "b", r.Get("data.tags.1").String())

		var v struct {
			Data struct {
				ID int `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, r.Unmarshal(&v))
		assert.Equal(t, 7, v.Data.ID)
	})
	t.Run("bad json", func(t *testing.T) {
		r, err := Decode(newResponse("application/json", `{"data":`))
		assert.Nil(t, r)
		assert.ErrorContains(t, err, "fetchx/request: invalid JSON body")
	})
	t.Run("text", func(t *testing.T) {
		r, err := Decode(newResponse("text/plain; charset=utf-8", "hello"))
		require.NoError(t, err)
		assert.Equal(t, Text, r.Type)
		assert.Equal(t, "hello", r.Text())
		assert.Nil(t, r.JSON)
	})
	t.Run("image", func(t *testing.T) {
		r, err := Decode(newResponse("image/png", "\x89PNG"))
		require.NoError(t, err)
		assert.Equal(t, Blob, r.Type)
		assert.Equal(t, []byte("\x89PNG"), r.Data)
	})
	t.Run("raw", func(t *testing.T) {
		resp := newResponse("application/zip", "PK")
		r, err := Decode(resp)
		require.NoError(t, err)
		assert.Equal(t, Raw, r.Type)
		assert.Nil(t, r.Data)
		b, err := io.ReadAll(r.Response.Body)
		require.NoError(t, err)
		assert.Equal(t, "PK", string(b), "raw body should be left for the caller")
	})
	t.Run("read error", func(t *testing.T) {
		m := &mockReadCloser{}
		m.Test(t)
		m.On("Read", mock.Anything).Return(0, errors.New("reset")).Once()
		resp := &http.Response{Header: http.Header{"Content-Type": {"text/plain"}}, Body: m}
		r, err := Decode(resp)
		assert.Nil(t, r)
		assert.EqualError(t, err, "reset")
		m.AssertExpectations(t)
	})
}

func TestResult(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		var r *Result
		assert.Equal(t, "", r.Text())
		assert.False(t, r.Get("a").Exists())
		assert.EqualError(t, r.Unmarshal(&struct{}{}), "fetchx/request: no data to unmarshal")
	})
	t.Run("value", func(t *testing.T) {
		r := ValueResult(42)
		assert.Equal(t, Value, r.Type)
		assert.Equal(t, 42, r.Value)
		assert.Nil(t, r.Response)
	})
}

func TestBuffer(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Buffer(nil))
		assert.NoError(t, Buffer(&http.Response{}))
	})
	t.Run("readable twice", func(t *testing.T) {
		resp := newResponse("text/plain", "not found")
		require.NoError(t, Buffer(resp))
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "not found", string(b))
	})
	t.Run("read error", func(t *testing.T) {
		m := &mockReadCloser{}
		m.Test(t)
		m.On("Read", mock.Anything).Return(0, errors.New("reset")).Once()
		resp := &http.Response{Body: m}
		assert.EqualError(t, Buffer(resp), "reset")
		assert.Equal(t, http.NoBody, resp.Body)
		m.AssertExpectations(t)
	})
}
