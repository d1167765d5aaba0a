// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/racing"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Merge(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		var c *Config
		m := c.Merge(nil)
		require.NotNil(t, m)
		assert.Equal(t, &Config{}, m)
	})
	t.Run("override", func(t *testing.T) {
		base := &Config{
			Host:       "/a",
			TimeoutMsg: "slow",
			CanAbort:   Bool(false),
			Hosts:      map[string]string{"x": "/x"},
			StatusMsg:  map[int]string{404: "missing", 500: "error"},
			Options:    &request.Options{Header: http.Header{"X-A": {"1"}}},
			Params:     params.New("token", "t"),
		}
		other := &Config{
			Host:      "/b",
			Timeout:   time.Second,
			Hosts:     map[string]string{"y": "/y"},
			StatusMsg: map[int]string{500: "server error"},
			Options:   &request.Options{Method: "PUT", Header: http.Header{"X-B": {"2"}}},
		}

		m := base.Merge(other)

		assert.Equal(t, "/b", m.Host)
		assert.Equal(t, "slow", m.TimeoutMsg)
		assert.Equal(t, time.Second, m.Timeout)
		assert.False(t, *m.CanAbort)
		assert.Equal(t, map[string]string{"x": "/x", "y": "/y"}, m.Hosts)
		assert.Equal(t, map[int]string{404: "missing", 500: "server error"}, m.StatusMsg)
		assert.Equal(t, "PUT", m.Options.Method)
		assert.Equal(t, "1", m.Options.Header.Get("X-A"))
		assert.Equal(t, "2", m.Options.Header.Get("X-B"))
		assert.Equal(t, []string{"token"}, m.Params.Keys())

		*m.CanAbort = true
		m.StatusMsg[404] = "changed"
		m.Params.Set("other", 1)
		assert.False(t, *base.CanAbort)
		assert.Equal(t, "missing", base.StatusMsg[404])
		assert.Equal(t, 1, base.Params.Len())
		assert.Equal(t, "/a", base.Host)
	})
	t.Run("can abort set", func(t *testing.T) {
		m := (&Config{CanAbort: Bool(false)}).Merge(&Config{CanAbort: Bool(true)})
		assert.True(t, *m.CanAbort)
	})
}

func TestConfig_defaults(t *testing.T) {
	var c Config
	assert.Equal(t, "", c.host())
	assert.Equal(t, http.DefaultClient, c.transport())
	assert.Equal(t, timeout.DefaultPolicy, c.timeoutPolicy())
	assert.Equal(t, DefaultTimeoutMsg, c.timeoutMsg())
	assert.Equal(t, DefaultAbortMsg, c.abortMsg())
	assert.True(t, c.canAbort())
	assert.Equal(t, racing.DefaultPollInterval, c.pollInterval())
	assert.Equal(t, DefaultExportTimeout, c.exportTimeout())
	assert.Equal(t, FallbackStatusMsg, c.statusMsg(404))
	assert.NotNil(t, c.logger())
	assert.Equal(t, 10*time.Second, c.timeoutPolicy().Timeout(&request.Execution{}))
}

func TestConfig_set(t *testing.T) {
	p := timeout.Fixed(time.Minute)
	c := Config{
		Hosts:         map[string]string{"a": "/a"},
		HostKey:       "a",
		Timeout:       time.Second,
		TimeoutMsg:    "t",
		AbortMsg:      "a",
		CanAbort:      Bool(false),
		PollInterval:  time.Millisecond,
		ExportTimeout: time.Hour,
		StatusMsg:     map[int]string{404: "missing"},
	}
	assert.Equal(t, "/a", c.host())
	assert.Equal(t, time.Second, c.timeoutPolicy().Timeout(&request.Execution{}))
	c.TimeoutPolicy = p
	assert.Equal(t, time.Minute, c.timeoutPolicy().Timeout(&request.Execution{}))
	assert.Equal(t, "t", c.timeoutMsg())
	assert.Equal(t, "a", c.abortMsg())
	assert.False(t, c.canAbort())
	assert.Equal(t, time.Millisecond, c.pollInterval())
	assert.Equal(t, time.Hour, c.exportTimeout())
	assert.Equal(t, "missing", c.statusMsg(404))
	c.HostKey = "unknown"
	assert.Equal(t, "", c.host())
}

func TestConfig_codec(t *testing.T) {
	ctx := context.Background()
	t.Run("none", func(t *testing.T) {
		p, err := (&Config{}).codec().Prepare(ctx, params.New("a", 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, p.Keys())
	})
	t.Run("static", func(t *testing.T) {
		p, err := (&Config{Params: params.New("t", 1)}).codec().Prepare(ctx, params.New("a", 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"t", "a"}, p.Keys())
	})
	t.Run("func", func(t *testing.T) {
		c := &Config{
			Params:     params.New("t", 1),
			ParamsFunc: func(*params.Params) *params.Params { return params.New("f", 1) },
		}
		p, err := c.codec().Prepare(ctx, params.New("a", 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"f", "a"}, p.Keys())
	})
}
