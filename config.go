// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/racing"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/timeout"
)

const (
	// DefaultTimeoutMsg is the message of a timeout error when
	// Config.TimeoutMsg is empty.
	DefaultTimeoutMsg = "request timed out"

	// DefaultAbortMsg is the message of an abort error when
	// Config.AbortMsg is empty.
	DefaultAbortMsg = "request aborted"

	// DefaultExportTimeout is the timeout of a file download when
	// Config.ExportTimeout is zero.
	DefaultExportTimeout = 3 * time.Minute
)

// Config configures a request instance. The zero value is a valid
// configuration: every zero field means the documented default.
//
// A Config is copied into each instance when the instance is created,
// so changing a Config afterwards does not affect instances already
// created from it. The hooks, however, are shared and must be safe for
// concurrent use.
type Config struct {
	// Host is the prefix of every relative URL, for example
	// "https://api.example.com/v1" or "/api".
	Host string

	// Hosts maps host keys to hosts. When Hosts is not nil, the host
	// selected by HostKey is used instead of Host.
	Hosts map[string]string

	// HostKey selects an entry of Hosts.
	HostKey string

	// Params are common parameters merged into every call.
	// Call-supplied parameters win on key collision.
	Params *params.Params

	// ParamsFunc, if not nil, computes the common parameters from the
	// call-supplied ones, and takes precedence over Params.
	ParamsFunc func(call *params.Params) *params.Params

	// BeforeParams, if not nil, may transform the merged parameters
	// before they are serialized. It may block, for example while
	// encrypting the parameters, and should return promptly once ctx is
	// done. A nil result with a nil error keeps the input.
	BeforeParams func(ctx context.Context, p *params.Params) (*params.Params, error)

	// AfterParams, if not nil, may transform the serialized
	// parameters. A nil result keeps the input.
	AfterParams func(b *params.Body) *params.Body

	// BeforeFetch, if not nil, runs before each dispatch. It may mutate
	// the execution's URL and Options in place. If it returns a
	// non-nil result, the dispatch is skipped and that result is
	// returned instead; if it returns an error, the fetch fails with
	// it.
	BeforeFetch func(ctx context.Context, e *request.Execution) (*request.Result, error)

	// Format, if not nil, is given the first chance to decode every
	// 200 response. A nil result with a nil error falls through to the
	// default decoding by content type.
	Format func(resp *http.Response, contentType string) (*request.Result, error)

	// StatusMsg maps status codes to the message of a status error.
	StatusMsg map[int]string

	// Timeout is the fixed timeout of each fetch. Zero means
	// timeout.DefaultTimeout.
	Timeout time.Duration

	// TimeoutPolicy, if not nil, decides the timeout of each fetch and
	// takes precedence over Timeout.
	TimeoutPolicy timeout.Policy

	// TimeoutMsg is the message of a timeout error. Empty means
	// DefaultTimeoutMsg.
	TimeoutMsg string

	// AbortMsg is the message of an abort error. Empty means
	// DefaultAbortMsg.
	AbortMsg string

	// CanAbort controls whether the instance can be aborted. Nil means
	// true.
	CanAbort *bool

	// PollInterval is the interval at which an in-flight fetch checks
	// whether its instance was aborted. Zero means
	// racing.DefaultPollInterval.
	PollInterval time.Duration

	// ExportTimeout is the timeout of a file download. Zero means
	// DefaultExportTimeout.
	ExportTimeout time.Duration

	// Resolve, if not nil, post-processes every successful result. An
	// error it returns fails the fetch with kind KindErr.
	Resolve func(ctx context.Context, res *request.Result, url string) (*request.Result, error)

	// Reject, if not nil, may inspect or replace every error. A nil
	// return forwards err unchanged.
	Reject func(err *Error, url string) error

	// Options are the instance's default transport options.
	Options *request.Options

	// Transport sends HTTP requests. Nil means http.DefaultClient.
	Transport Transport

	// Handlers are the event handlers to run during each fetch.
	Handlers *HandlerGroup

	// Logger receives debug records about each fetch. Nil discards
	// them.
	Logger *slog.Logger
}

// Bool returns a pointer to b, for use with Config.CanAbort.
func Bool(b bool) *bool {
	return &b
}

// Merge returns a new Config holding c overlaid by other. Every
// non-zero field of other replaces the field of c, except that:
//
// • Options are merged with request.Merge;
//
// • StatusMsg and Hosts are merged key by key, with other winning on
// collision.
//
// Either config may be nil. Neither is modified, and the maps and
// parameters of the result are fresh copies.
func (c *Config) Merge(other *Config) *Config {
	var a, o Config
	if c != nil {
		a = *c
	}
	if other != nil {
		o = *other
	}

	m := a
	if o.Host != "" {
		m.Host = o.Host
	}
	if o.HostKey != "" {
		m.HostKey = o.HostKey
	}
	if o.Params != nil {
		m.Params = o.Params
	}
	if o.ParamsFunc != nil {
		m.ParamsFunc = o.ParamsFunc
	}
	if o.BeforeParams != nil {
		m.BeforeParams = o.BeforeParams
	}
	if o.AfterParams != nil {
		m.AfterParams = o.AfterParams
	}
	if o.BeforeFetch != nil {
		m.BeforeFetch = o.BeforeFetch
	}
	if o.Format != nil {
		m.Format = o.Format
	}
	if o.Timeout != 0 {
		m.Timeout = o.Timeout
	}
	if o.TimeoutPolicy != nil {
		m.TimeoutPolicy = o.TimeoutPolicy
	}
	if o.TimeoutMsg != "" {
		m.TimeoutMsg = o.TimeoutMsg
	}
	if o.AbortMsg != "" {
		m.AbortMsg = o.AbortMsg
	}
	if o.CanAbort != nil {
		m.CanAbort = o.CanAbort
	}
	if m.CanAbort != nil {
		m.CanAbort = Bool(*m.CanAbort)
	}
	if o.PollInterval != 0 {
		m.PollInterval = o.PollInterval
	}
	if o.ExportTimeout != 0 {
		m.ExportTimeout = o.ExportTimeout
	}
	if o.Resolve != nil {
		m.Resolve = o.Resolve
	}
	if o.Reject != nil {
		m.Reject = o.Reject
	}
	if o.Transport != nil {
		m.Transport = o.Transport
	}
	if o.Handlers != nil {
		m.Handlers = o.Handlers
	}
	if o.Logger != nil {
		m.Logger = o.Logger
	}

	m.Hosts = mergeMaps(a.Hosts, o.Hosts)
	m.StatusMsg = mergeMaps(a.StatusMsg, o.StatusMsg)
	if a.Options != nil || o.Options != nil {
		m.Options = request.Merge(a.Options, o.Options)
	}
	if m.Params != nil {
		m.Params = m.Params.Clone()
	}
	return &m
}

func mergeMaps[K comparable, V any](a, b map[K]V) map[K]V {
	if a == nil && b == nil {
		return nil
	}
	m := make(map[K]V, len(a)+len(b))
	for k, v := range a {
		m[k] = v
	}
	for k, v := range b {
		m[k] = v
	}
	return m
}

func (c *Config) host() string {
	if c.Hosts != nil {
		return c.Hosts[c.HostKey]
	}
	return c.Host
}

func (c *Config) transport() Transport {
	if c.Transport == nil {
		return http.DefaultClient
	}
	return c.Transport
}

func (c *Config) timeoutPolicy() timeout.Policy {
	if c.TimeoutPolicy != nil {
		return c.TimeoutPolicy
	}
	if c.Timeout > 0 {
		return timeout.Fixed(c.Timeout)
	}
	return timeout.DefaultPolicy
}

func (c *Config) timeoutMsg() string {
	if c.TimeoutMsg == "" {
		return DefaultTimeoutMsg
	}
	return c.TimeoutMsg
}

func (c *Config) abortMsg() string {
	if c.AbortMsg == "" {
		return DefaultAbortMsg
	}
	return c.AbortMsg
}

func (c *Config) canAbort() bool {
	return c.CanAbort == nil || *c.CanAbort
}

func (c *Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return racing.DefaultPollInterval
	}
	return c.PollInterval
}

func (c *Config) exportTimeout() time.Duration {
	if c.ExportTimeout <= 0 {
		return DefaultExportTimeout
	}
	return c.ExportTimeout
}

func (c *Config) statusMsg(code int) string {
	if msg, ok := c.StatusMsg[code]; ok {
		return msg
	}
	return FallbackStatusMsg
}

var discardLogger = slog.New(slog.DiscardHandler)

func (c *Config) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return discardLogger
	}
	return c.Logger
}

func (c *Config) codec() *params.Codec {
	codec := &params.Codec{
		Before: c.BeforeParams,
		After:  c.AfterParams,
	}
	if c.ParamsFunc != nil {
		codec.Common = c.ParamsFunc
	} else if c.Params != nil {
		common := c.Params
		codec.Common = func(_ *params.Params) *params.Params { return common }
	}
	return codec
}
