// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
)

// ErrNoRequest is returned by Reload when the instance has not issued
// any request yet.
var ErrNoRequest = errors.New("fetchx: no request to reload")

// FormURLEncoded is the default Content-Type of a POST or PUT.
const FormURLEncoded = "application/x-www-form-urlencoded; charset=UTF-8"

type verb int

const (
	verbFetch verb = iota
	verbGet
	verbPost
	verbPut
	verbDelete
	verbForm
)

var verbMethods = [...]string{
	verbFetch:  "",
	verbGet:    http.MethodGet,
	verbPost:   http.MethodPost,
	verbPut:    http.MethodPut,
	verbDelete: http.MethodDelete,
	verbForm:   http.MethodPost,
}

type preparer func(ctx context.Context) (*request.Execution, error)

// A Core owns the lifecycle of the requests issued by one instance:
// URL resolution, parameter serialization, option merging, dispatch to
// the transport, status validation, and decoding by content type.
//
// A Core has no timeout or abort of its own; use a Request for that.
// Failed fetches return an *Error of kind KindStatus when the response
// status is not 200, and any other error (for example a transport
// error) unchanged.
//
// Every fetch works on a private execution record, which is published
// as the instance's last request when the fetch settles. A Core is
// safe for concurrent use, but since each settled fetch replaces the
// last request, Reload is only meaningful when fetches on one instance
// are issued one at a time.
type Core struct {
	cfg   *Config
	codec *params.Codec

	mu   sync.Mutex
	last *request.Execution
}

// NewCore returns a Core configured by a copy of cfg. A nil cfg is the
// same as a zero Config.
func NewCore(cfg *Config) *Core {
	cfg = cfg.Merge(nil)
	return &Core{
		cfg:   cfg,
		codec: cfg.codec(),
	}
}

// Config returns a copy of the instance's configuration.
func (c *Core) Config() *Config {
	return c.cfg.Merge(nil)
}

// ResolveURL resolves url against the configured host.
//
// A URL containing "//" is treated as absolute and returned verbatim.
// Otherwise any leading '/' is stripped and the URL is joined to the
// host with exactly one '/'. When Config.Hosts is set, the host is the
// entry selected by Config.HostKey.
func (c *Core) ResolveURL(url string) string {
	if strings.Contains(url, "//") {
		return url
	}
	return strings.TrimSuffix(c.cfg.host(), "/") + "/" + strings.TrimPrefix(url, "/")
}

// Last returns the record of the most recently settled fetch, or nil if
// no fetch has settled yet. The record must not be modified.
func (c *Core) Last() *request.Execution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Fetch dispatches a request to url with the instance's default options
// merged with opts. No parameters are serialized.
func (c *Core) Fetch(ctx context.Context, url string, opts *request.Options) (*request.Result, error) {
	return c.execute(ctx, c.preparer(verbFetch, url, nil, opts))
}

// Get serializes p as a query string, appends it to url, and issues a
// GET. Parameters whose value is nil or the empty string are omitted.
func (c *Core) Get(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return c.execute(ctx, c.preparer(verbGet, url, p, opts))
}

// Post serializes p as a URL-encoded body and issues a POST with the
// Content-Type FormURLEncoded, unless opts overrides it.
//
// If opts has a Body, it is sent instead of the serialized parameters.
// Otherwise, if the merged options have a BodyFunc, it receives the
// serialized parameters and returns the body to send.
func (c *Core) Post(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return c.execute(ctx, c.preparer(verbPost, url, p, opts))
}

// Put behaves as Post, but issues a PUT.
func (c *Core) Put(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return c.execute(ctx, c.preparer(verbPut, url, p, opts))
}

// Delete behaves as Get, but issues a DELETE.
func (c *Core) Delete(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return c.execute(ctx, c.preparer(verbDelete, url, p, opts))
}

// Form serializes p as a multipart/form-data body and issues a POST.
// Values of type *params.File, []byte, and io.Reader become file parts.
// Any Content-Type header in the options is dropped, so that the
// multipart content type with its boundary is sent.
func (c *Core) Form(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error) {
	return c.execute(ctx, c.preparer(verbForm, url, p, opts))
}

// Reload repeats the most recent request, using its resolved URL and
// merged options. The before-fetch hook runs again. Reload returns
// ErrNoRequest if no fetch has settled yet.
func (c *Core) Reload(ctx context.Context) (*request.Result, error) {
	return c.execute(ctx, c.reloader())
}

// CloseIdleConnections closes idle connections of the transport, if it
// supports doing so.
func (c *Core) CloseIdleConnections() {
	if ic, ok := c.cfg.transport().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Core) execute(ctx context.Context, prep preparer) (*request.Result, error) {
	start := time.Now()
	e, err := prep(ctx)
	if err != nil {
		return nil, err
	}
	e.Start = start
	c.cfg.Handlers.run(BeforeStart, e)
	c.dispatch(ctx, e)
	e.End = time.Now()
	c.publish(e)
	c.cfg.Handlers.run(AfterSettle, e)
	logSettled(ctx, c.cfg.logger(), e)
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Result, nil
}

func (c *Core) preparer(v verb, url string, p *params.Params, opts *request.Options) preparer {
	return func(ctx context.Context) (*request.Execution, error) {
		return c.prepare(ctx, v, url, p, opts)
	}
}

func (c *Core) reloader() preparer {
	return func(_ context.Context) (*request.Execution, error) {
		last := c.Last()
		if last == nil {
			return nil, ErrNoRequest
		}
		return &request.Execution{
			SrcURL:    last.SrcURL,
			URL:       last.URL,
			Options:   last.Options.Clone(),
			SrcParams: last.SrcParams,
			Params:    last.Params,
			Body:      last.Body,
		}, nil
	}
}

// prepare resolves one call into an execution record ready to be
// dispatched. The option layers are, from weakest to strongest: the
// instance defaults, the verb's defaults, the per-call options, and the
// verb's fixed method.
func (c *Core) prepare(ctx context.Context, v verb, url string, p *params.Params, opts *request.Options) (*request.Execution, error) {
	e := &request.Execution{
		SrcURL:    url,
		URL:       c.ResolveURL(url),
		SrcParams: p,
	}

	if v == verbFetch {
		e.Options = withHeader(request.Merge(c.cfg.Options, opts))
		return e, e.Options.Buffer()
	}

	kind := params.Query
	if v == verbForm {
		kind = params.Form
	}
	hp, body, err := c.codec.Serialize(ctx, p, kind)
	if err != nil {
		return nil, err
	}
	e.Params, e.Body = hp, body

	var verbDefaults *request.Options
	if v == verbPost || v == verbPut {
		verbDefaults = &request.Options{Header: http.Header{"Content-Type": {FormURLEncoded}}}
	}
	e.Options = withHeader(request.Merge(c.cfg.Options, verbDefaults, opts, &request.Options{Method: verbMethods[v]}))

	switch v {
	case verbGet, verbDelete:
		e.URL = appendQuery(e.URL, body.String())
	case verbPost, verbPut:
		if opts == nil || opts.Body == nil {
			if e.Options.BodyFunc != nil {
				b, err := e.Options.BodyFunc(body)
				if err != nil {
					return nil, err
				}
				e.Options.Body = b
			} else {
				e.Options.Body = body
			}
		}
	case verbForm:
		e.Options.Header.Del("Content-Type")
		e.Options.Body = body
	}

	return e, e.Options.Buffer()
}

// withHeader makes sure hooks can set headers on o.
func withHeader(o *request.Options) *request.Options {
	if o.Header == nil {
		o.Header = make(http.Header)
	}
	return o
}

func appendQuery(url, query string) string {
	switch {
	case query == "":
		return url
	case !strings.Contains(url, "?"):
		return url + "?" + query
	case strings.HasSuffix(url, "?"), strings.HasSuffix(url, "&"):
		return url + query
	default:
		return url + "&" + query
	}
}

// dispatch runs the before-fetch hook, sends the request, validates the
// status, and decodes the response, recording the outcome in e.
func (c *Core) dispatch(ctx context.Context, e *request.Execution) {
	if c.cfg.BeforeFetch != nil {
		res, err := c.cfg.BeforeFetch(ctx, e)
		if err != nil {
			e.Err = err
			return
		}
		if res != nil {
			if res.Type == "" {
				res.Type = request.Value
			}
			e.Result = res
			e.Type = res.Type
			return
		}
	}

	req, err := e.Options.ToRequest(ctx, e.URL)
	if err != nil {
		e.Err = err
		return
	}
	e.Request = req
	c.cfg.Handlers.run(BeforeDispatch, e)

	resp, err := c.cfg.transport().Do(e.Request)
	if err != nil {
		e.Err = err
		return
	}
	e.Response = resp
	c.cfg.Handlers.run(AfterResponse, e)

	if resp.StatusCode != http.StatusOK {
		_ = request.Buffer(resp)
		e.Err = &Error{
			Kind:     KindStatus,
			Status:   strconv.Itoa(resp.StatusCode),
			Message:  c.cfg.statusMsg(resp.StatusCode),
			Response: resp,
			URL:      e.SrcURL,
		}
		return
	}

	e.Result, e.Err = c.decode(resp)
	if e.Result != nil {
		e.Type = e.Result.Type
	}
}

func (c *Core) decode(resp *http.Response) (*request.Result, error) {
	if c.cfg.Format != nil {
		res, err := c.cfg.Format(resp, resp.Header.Get("Content-Type"))
		if res != nil && res.Type == "" {
			if res.Data != nil {
				res.Type = request.Blob
			} else {
				res.Type = request.Raw
			}
		}
		if err != nil || res != nil {
			return res, err
		}
	}
	return request.Decode(resp)
}

func (c *Core) publish(e *request.Execution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = e
}

func logSettled(ctx context.Context, logger *slog.Logger, e *request.Execution) {
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []any{
		"method", e.Method(),
		"url", e.URL,
		"duration_ms", e.Duration().Milliseconds(),
	}
	if e.ID != "" {
		attrs = append(attrs, "request_id", e.ID)
	}
	if e.Err == nil {
		attrs = append(attrs, "status", e.StatusCode(), "type", string(e.Type))
		logger.DebugContext(ctx, "fetch succeeded", attrs...)
		return
	}
	kind := KindErr
	var ferr *Error
	if errors.As(e.Err, &ferr) {
		kind = ferr.Kind
	}
	attrs = append(attrs,
		"kind", string(kind),
		"reason", transient.Categorize(e.Err).String(),
		"error", e.Err,
	)
	logger.DebugContext(ctx, "fetch failed", attrs...)
}
