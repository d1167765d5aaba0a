// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"sync"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/request"
)

// A Factory creates request instances from a shared default
// configuration and keeps a registry of the live ones, so they can be
// aborted together.
//
// The zero value is a Factory with an empty default configuration. A
// Factory is safe for concurrent use.
type Factory struct {
	mu       sync.Mutex
	defaults *Config
	live     map[string]*Request
}

// NewFactory returns a Factory whose default configuration is a copy of
// defaults.
func NewFactory(defaults *Config) *Factory {
	return &Factory{defaults: defaults.Merge(nil)}
}

// Init merges cfg into the factory's default configuration. Instances
// created earlier keep the configuration they were created with.
func (f *Factory) Init(cfg *Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaults = f.defaults.Merge(cfg)
}

// Defaults returns a copy of the factory's default configuration.
func (f *Factory) Defaults() *Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defaults.Merge(nil)
}

// Create returns a new Request configured by the factory defaults
// overlaid by cfg. The instance stays registered until Clear is called.
func (f *Factory) Create(cfg *Config) *Request {
	r := f.newRequest(cfg)
	f.register(r)
	return r
}

// Get creates a one-shot instance configured by the factory defaults
// overlaid by cfg, and issues a GET with it. The instance is
// deregistered once the fetch settles.
func (f *Factory) Get(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return f.oneShot(cfg).Get(ctx, url, p, opts)
}

// Post behaves as Get, but issues a POST.
func (f *Factory) Post(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return f.oneShot(cfg).Post(ctx, url, p, opts)
}

// Put behaves as Get, but issues a PUT.
func (f *Factory) Put(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return f.oneShot(cfg).Put(ctx, url, p, opts)
}

// Delete behaves as Get, but issues a DELETE.
func (f *Factory) Delete(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return f.oneShot(cfg).Delete(ctx, url, p, opts)
}

// Form behaves as Get, but issues a multipart/form-data POST.
func (f *Factory) Form(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return f.oneShot(cfg).Form(ctx, url, p, opts)
}

// Clear aborts every registered instance and empties the registry.
// Instances created with CanAbort set to false are dropped from the
// registry without being aborted.
func (f *Factory) Clear() {
	f.mu.Lock()
	live := f.live
	f.live = nil
	logger := f.defaults.logger()
	f.mu.Unlock()
	for _, r := range live {
		r.Abort()
	}
	logger.Debug("factory cleared", "instances", len(live))
}

// Len returns the number of registered instances.
func (f *Factory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *Factory) newRequest(cfg *Config) *Request {
	return NewRequest(f.Defaults().Merge(cfg))
}

func (f *Factory) oneShot(cfg *Config) *Request {
	return f.track(f.newRequest(cfg))
}

// track registers r until its next fetch settles.
func (f *Factory) track(r *Request) *Request {
	r.onSettle = f.deregister
	f.register(r)
	return r
}

func (f *Factory) register(r *Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.live == nil {
		f.live = make(map[string]*Request)
	}
	f.live[r.id] = r
}

func (f *Factory) deregister(r *Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, r.id)
}

// Default is the factory used by the package-level functions.
var Default = &Factory{}

// Init merges cfg into the default factory's configuration.
func Init(cfg *Config) {
	Default.Init(cfg)
}

// Create returns a new registered instance of the default factory.
func Create(cfg *Config) *Request {
	return Default.Create(cfg)
}

// Get issues a GET with a one-shot instance of the default factory.
func Get(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return Default.Get(ctx, url, p, opts, cfg)
}

// Post issues a POST with a one-shot instance of the default factory.
func Post(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return Default.Post(ctx, url, p, opts, cfg)
}

// Put issues a PUT with a one-shot instance of the default factory.
func Put(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return Default.Put(ctx, url, p, opts, cfg)
}

// Delete issues a DELETE with a one-shot instance of the default
// factory.
func Delete(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return Default.Delete(ctx, url, p, opts, cfg)
}

// Form issues a multipart/form-data POST with a one-shot instance of
// the default factory.
func Form(ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *Config) (*request.Result, error) {
	return Default.Form(ctx, url, p, opts, cfg)
}

// File downloads a file with a one-shot instance of the default
// factory.
func File(ctx context.Context, url string, p *params.Params, dir, filename string, cfg *Config) (*FileResult, error) {
	return Default.File(ctx, url, p, dir, filename, cfg)
}

// Clear aborts every registered instance of the default factory.
func Clear() {
	Default.Clear()
}
