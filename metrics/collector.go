// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"errors"
	"strconv"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// KindOK is the kind label of a fetch which succeeded.
const KindOK = "ok"

type startedKey struct{}

// A Collector records Prometheus metrics about fetches. It is a
// fetchx.Handler: install it into a HandlerGroup with Install.
//
// A Collector is safe for concurrent use.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	responsesTotal   *prometheus.CounterVec
	timeoutsTotal    *prometheus.CounterVec
	abortsTotal      *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
}

// NewCollector creates a Collector whose metrics are registered with
// reg and named with the prefix namespace. An empty namespace means
// "fetchx". A nil reg means prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "fetchx"
	}
	f := promauto.With(reg)
	return &Collector{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of settled fetches, by outcome kind.",
			},
			[]string{"method", "kind"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of fetches from start to settlement.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "kind"},
		),
		requestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of fetches started but not yet settled.",
			},
			[]string{"method"},
		),
		responsesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "responses_total",
				Help:      "Total number of HTTP responses received, by status code.",
			},
			[]string{"method", "status_code"},
		),
		timeoutsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timeouts_total",
				Help:      "Total number of fetches which timed out.",
			},
			[]string{"method"},
		),
		abortsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aborts_total",
				Help:      "Total number of fetches which were aborted.",
			},
			[]string{"method"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed fetches, by transient error category.",
			},
			[]string{"method", "reason"},
		),
	}
}

// Install adds c to every event chain of g which it observes.
func (c *Collector) Install(g *fetchx.HandlerGroup) {
	for _, evt := range []fetchx.Event{
		fetchx.BeforeStart,
		fetchx.AfterResponse,
		fetchx.AfterTimeout,
		fetchx.AfterAbort,
		fetchx.AfterSettle,
	} {
		g.PushBack(evt, c)
	}
}

// Handle records the metrics of one event.
func (c *Collector) Handle(evt fetchx.Event, e *request.Execution) {
	method := e.Method()
	switch evt {
	case fetchx.BeforeStart:
		e.SetValue(startedKey{}, true)
		c.requestsInFlight.WithLabelValues(method).Inc()
	case fetchx.AfterResponse:
		c.responsesTotal.WithLabelValues(method, strconv.Itoa(e.StatusCode())).Inc()
	case fetchx.AfterTimeout:
		c.timeoutsTotal.WithLabelValues(method).Inc()
	case fetchx.AfterAbort:
		c.abortsTotal.WithLabelValues(method).Inc()
	case fetchx.AfterSettle:
		if e.Value(startedKey{}) != nil {
			c.requestsInFlight.WithLabelValues(method).Dec()
		}
		kind := Kind(e.Err)
		c.requestsTotal.WithLabelValues(method, kind).Inc()
		c.requestDuration.WithLabelValues(method, kind).Observe(e.Duration().Seconds())
		if e.Err != nil {
			c.errorsTotal.WithLabelValues(method, transient.Categorize(e.Err).String()).Inc()
		}
	}
}

// Kind returns the kind label of a fetch which ended with err: KindOK
// for a nil err, the Kind of an *fetchx.Error, and "err" otherwise.
func Kind(err error) string {
	if err == nil {
		return KindOK
	}
	var ferr *fetchx.Error
	if errors.As(err, &ferr) {
		return string(ferr.Kind)
	}
	return string(fetchx.KindErr)
}
