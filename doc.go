// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package fetchx provides an HTTP request layer for talking to a JSON
API: relative URLs resolved against a configured host, ordered
parameter sets serialized as a query string, a URL-encoded body, or a
multipart form, responses decoded by content type, and per-request
timeouts with cooperative cancellation.

Create a Request to begin making requests.

	r := fetchx.NewRequest(&fetchx.Config{
		Host:    "https://api.example.com/v1",
		Timeout: 5 * time.Second,
	})
	p := params.New("id", 1, "name", "x")
	res, err := r.Get(ctx, "users", p, nil)
	...
	fmt.Println(res.Get("data.0.name"))

Every error returned by a Request is an *Error, whose Kind tells a bad
status, a timeout, an abort, and any other failure apart:

	var ferr *fetchx.Error
	if errors.As(err, &ferr) && ferr.Kind == fetchx.KindTimeout {
		...
	}

An instance can be aborted from any goroutine. The fetch in flight
fails with kind KindAbort within one poll interval, and so does every
later fetch on the instance:

	go func() {
		<-cancelButton
		r.Abort()
	}()

For shared defaults and bulk cancellation, use a Factory, or the
package-level functions which use the Default factory:

	fetchx.Init(&fetchx.Config{Host: "/api"})
	res, err := fetchx.Post(ctx, "orders", p, nil, nil)
	...
	fetchx.Clear() // Abort every instance created with Create.

A Core is the lifecycle of a Request without the timeout and abort. To
hook into the details of each fetch, install a handler into the
appropriate handler chain of a Config:

	handlers := &fetchx.HandlerGroup{}
	handlers.PushBack(fetchx.BeforeDispatch, fetchx.HandlerFunc(
		func(_ fetchx.Event, e *request.Execution) {
			e.Request.Header.Set("Authorization", token())
		}),
	)

Package fetchx provides basic interfaces for each verb of a request
instance (Fetcher, Getter, Poster, Putter, Deleter, FormPoster,
Reloader, and IdleCloser), and a combined interface that composes them
all (Executor).
*/
package fetchx
