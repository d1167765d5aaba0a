// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"net/http"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/request"
)

// Transport is the interface that wraps the basic Do method, which
// sends one HTTP request and returns its response. *http.Client
// implements Transport.
type Transport interface {
	Do(r *http.Request) (*http.Response, error)
}

// Fetcher is the interface that wraps the basic Fetch method.
//
// Fetch dispatches a request to url using the instance's default
// options merged with opts, and decodes the response.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts *request.Options) (*request.Result, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Get serializes p as a query string, appends it to url, and issues a
// GET.
type Getter interface {
	Get(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Post serializes p as a URL-encoded body and issues a POST.
type Poster interface {
	Post(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error)
}

// Putter is the interface that wraps the basic Put method.
//
// Put behaves as Post, but issues a PUT.
type Putter interface {
	Put(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error)
}

// Deleter is the interface that wraps the basic Delete method.
//
// Delete behaves as Get, but issues a DELETE.
type Deleter interface {
	Delete(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error)
}

// FormPoster is the interface that wraps the basic Form method.
//
// Form serializes p as a multipart/form-data body and issues a POST.
type FormPoster interface {
	Form(ctx context.Context, url string, p *params.Params, opts *request.Options) (*request.Result, error)
}

// Reloader is the interface that wraps the basic Reload method.
//
// Reload repeats the most recent request using its cached URL and
// options.
type Reloader interface {
	Reload(ctx context.Context) (*request.Result, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any idle connections left over from previous requests. It
// does not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups every verb of a request
// instance. Both Core and Request implement it.
type Executor interface {
	Fetcher
	Getter
	Poster
	Putter
	Deleter
	FormPoster
	Reloader
	IdleCloser
}

var (
	_ Executor = (*Core)(nil)
	_ Executor = (*Request)(nil)
)
