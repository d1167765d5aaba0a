// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/timeout"
	"github.com/tidwall/gjson"
)

const (
	// ExportTypeHeader is the response header which, when it holds
	// "json", marks a file download response as an error report.
	ExportTypeHeader = "Export-Type"

	// ExportFilenameHeader is the response header consulted for the
	// file name when there is no Content-Disposition.
	ExportFilenameHeader = "Export-Filename"

	// DefaultFilename is the name of a downloaded file when neither the
	// caller nor the response names it.
	DefaultFilename = "download"

	exportedMsg = "file exported"
)

// ErrNoResponse is the cause of the error File returns when the fetch
// settles without an HTTP response, as it does when a BeforeFetch hook
// supplies the result.
var ErrNoResponse = errors.New("fetchx: no response to save")

// A FileResult describes a successful file download.
type FileResult struct {
	// Code is always 200.
	Code int
	// Msg is a human-readable success message.
	Msg string
	// Path is where the file was written.
	Path string
}

// A FileError is a failure reported by the server in place of a file.
type FileError struct {
	// Code is the "retcode" of the report.
	Code int
	// Msg is the "retdesc" of the report.
	Msg string
}

func (err *FileError) Error() string {
	return fmt.Sprintf("fetchx: export failed: %d: %s", err.Code, err.Msg)
}

// File POSTs p to url and saves the response body as a file in dir,
// creating dir if needed.
//
// The fetch uses the factory defaults overlaid by cfg, except that its
// timeout is Config.ExportTimeout, its body is always read as a blob,
// and the Resolve and Reject hooks are not run.
//
// If the response has the header Export-Type: json, its body is a
// report of the form {"retcode": 500, "retdesc": "..."}; a report with
// a retcode other than 200 is returned as a *FileError. A fetch which
// settles without a response fails with kind KindErr, wrapping
// ErrNoResponse.
//
// The file is named filename if it is not empty, otherwise by the
// filename parameter of the Content-Disposition header, otherwise by
// the Export-Filename header, and otherwise DefaultFilename. Only the
// last element of the name is used.
func (f *Factory) File(ctx context.Context, url string, p *params.Params, dir, filename string, cfg *Config) (*FileResult, error) {
	c := f.Defaults().Merge(cfg)
	c.Format = blobFormat
	c.TimeoutPolicy = timeout.Fixed(c.exportTimeout())
	c.Resolve = nil
	c.Reject = nil

	r := f.track(NewRequest(c))
	res, err := r.Post(ctx, url, p, nil)
	if err != nil {
		return nil, err
	}
	if res.Response == nil {
		return nil, &Error{
			Kind:    KindErr,
			Message: ErrNoResponse.Error(),
			Cause:   ErrNoResponse,
			Request: r,
			URL:     url,
		}
	}

	h := res.Response.Header
	if unescape(h.Get(ExportTypeHeader)) == "json" {
		code := int(gjson.GetBytes(res.Data, "retcode").Int())
		msg := gjson.GetBytes(res.Data, "retdesc").String()
		if code != http.StatusOK {
			return nil, &FileError{Code: code, Msg: msg}
		}
		return &FileResult{Code: code, Msg: msg}, nil
	}

	if filename == "" {
		filename = responseFilename(h)
	} else {
		filename = filepath.Base(filename)
	}
	if dir == "" {
		dir = "."
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filename)
	if err = os.WriteFile(path, res.Data, 0o644); err != nil {
		return nil, err
	}
	return &FileResult{Code: http.StatusOK, Msg: exportedMsg, Path: path}, nil
}

func blobFormat(resp *http.Response, _ string) (*request.Result, error) {
	b, err := request.BodyBytes(resp.Body)
	if err != nil {
		return nil, err
	}
	return &request.Result{Type: request.Blob, Data: b, Response: resp}, nil
}

func responseFilename(h http.Header) string {
	var name string
	if cd := h.Get("Content-Disposition"); cd != "" {
		if _, ps, err := mime.ParseMediaType(cd); err == nil {
			name = ps["filename"]
		}
	}
	if name == "" {
		name = h.Get(ExportFilenameHeader)
	}
	name = filepath.Base(unescape(name))
	switch name {
	case ".", "..", string(filepath.Separator):
		return DefaultFilename
	}
	return name
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
