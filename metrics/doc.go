// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics exports Prometheus metrics about fetches.

Create a Collector and install it into the handler group of a config:

	handlers := &fetchx.HandlerGroup{}
	metrics.NewCollector(prometheus.DefaultRegisterer, "myapp").Install(handlers)
	r := fetchx.NewRequest(&fetchx.Config{Handlers: handlers})
*/
package metrics
