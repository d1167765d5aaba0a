// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("dispatch wins", func(t *testing.T) {
		v, err := Run(context.Background(), Race{Timeout: time.Hour, Aborted: func() bool { return false }},
			func(_ context.Context) (string, error) {
				return "ok", nil
			})
		assert.NoError(t, err)
		assert.Equal(t, "ok", v)
	})
	t.Run("dispatch error", func(t *testing.T) {
		expectedErr := errors.New("connection refused")
		v, err := Run(context.Background(), Race{}, func(_ context.Context) (int, error) {
			return 0, expectedErr
		})
		assert.Same(t, expectedErr, err)
		assert.Equal(t, 0, v)
	})
	t.Run("timeout wins", func(t *testing.T) {
		t.Parallel()
		cause := make(chan error, 1)
		start := time.Now()
		v, err := Run(context.Background(), Race{Timeout: 50 * time.Millisecond},
			func(ctx context.Context) (*int, error) {
				<-ctx.Done()
				cause <- context.Cause(ctx)
				return nil, ctx.Err()
			})
		elapsed := time.Since(start)
		assert.Same(t, ErrTimeout, err)
		assert.Nil(t, v)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, 80*time.Millisecond)
		select {
		case c := <-cause:
			assert.Same(t, Redundant, c)
		case <-time.After(time.Second):
			require.Fail(t, "dispatch context not cancelled")
		}
	})
	t.Run("abort wins", func(t *testing.T) {
		t.Parallel()
		var aborted int32
		go func() {
			time.Sleep(10 * time.Millisecond)
			atomic.StoreInt32(&aborted, 1)
		}()
		start := time.Now()
		_, err := Run(context.Background(), Race{
			Timeout:      time.Second,
			PollInterval: 20 * time.Millisecond,
			Aborted:      func() bool { return atomic.LoadInt32(&aborted) == 1 },
		}, func(ctx context.Context) (string, error) {
			select {
			case <-time.After(100 * time.Millisecond):
				return "late", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		})
		elapsed := time.Since(start)
		assert.Same(t, ErrAbort, err)
		assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
		assert.Less(t, elapsed, 60*time.Millisecond)
	})
	t.Run("already aborted", func(t *testing.T) {
		var called bool
		_, err := Run(context.Background(), Race{Aborted: func() bool { return true }},
			func(_ context.Context) (string, error) {
				called = true
				return "", nil
			})
		assert.Same(t, ErrAbort, err)
		assert.False(t, called)
	})
	t.Run("context done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(5 * time.Millisecond)
			cancel()
		}()
		_, err := Run(ctx, Race{Timeout: time.Second}, func(ctx context.Context) (string, error) {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return "", ctx.Err()
		})
		assert.Same(t, context.Canceled, err)
	})
	t.Run("context already done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for i := 0; i < 50; i++ {
			v, err := Run(ctx, Race{Timeout: time.Second, Aborted: func() bool { return false }}, func(ctx context.Context) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			})
			assert.Same(t, context.Canceled, err)
			assert.Empty(t, v)
		}
	})
	t.Run("nanosecond timeout", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			var cause atomic.Value
			exited := make(chan struct{})
			v, err := Run(context.Background(), Race{Timeout: time.Nanosecond}, func(ctx context.Context) (string, error) {
				defer close(exited)
				<-ctx.Done()
				cause.Store(context.Cause(ctx))
				return "late", nil
			})
			assert.Same(t, ErrTimeout, err)
			assert.Empty(t, v)
			<-exited
			assert.Same(t, Redundant, cause.Load())
		}
	})
	t.Run("abort with short poll", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			var aborted atomic.Bool
			started := make(chan struct{})
			go func() {
				<-started
				aborted.Store(true)
			}()
			v, err := Run(context.Background(), Race{PollInterval: time.Millisecond, Aborted: aborted.Load}, func(ctx context.Context) (string, error) {
				close(started)
				<-ctx.Done()
				return "late", nil
			})
			assert.Same(t, ErrAbort, err)
			assert.Empty(t, v)
		}
	})
	t.Run("no poll after settle", func(t *testing.T) {
		t.Parallel()
		var polls int32
		_, err := Run(context.Background(), Race{
			Timeout:      15 * time.Millisecond,
			PollInterval: 5 * time.Millisecond,
			Aborted: func() bool {
				atomic.AddInt32(&polls, 1)
				return false
			},
		}, func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		assert.Same(t, ErrTimeout, err)
		n := atomic.LoadInt32(&polls)
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, n, atomic.LoadInt32(&polls))
	})
	t.Run("default poll interval", func(t *testing.T) {
		assert.Equal(t, 300*time.Millisecond, DefaultPollInterval)
	})
}

func ExampleRun() {
	v, err := Run(context.Background(), Race{Timeout: time.Second}, func(_ context.Context) (string, error) {
		return "done", nil
	})
	fmt.Println(v, err)
	// Output: done <nil>
}
