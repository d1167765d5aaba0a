// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads fetchx configuration from YAML files.

A configuration file looks like this:

	host: https://api.example.com/v1
	hosts:
	  prod: https://api.example.com/v1
	  test: https://test.example.com/v1
	hostKey: test
	params:
	  appId: web
	  version: 3
	statusMsg:
	  401: please log in
	timeout: 15s
	canAbort: true
	pollInterval: 100ms
	exportTimeout: 5m
	headers:
	  Accept: application/json

Durations are Go duration strings or whole seconds. The order of the
keys under params is kept.
*/
package config
