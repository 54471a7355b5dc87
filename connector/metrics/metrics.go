// Package metrics instruments a dialer with Prometheus counters,
// gauges, and a latency histogram: wrap the collaborator, register
// its own per-label collectors, keep the wrapped call a single
// straight-line path.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/transport"
)

// DialFunc is the shape of a connector's Connect method, duplicated
// here rather than imported to keep this package free of a dependency
// on the connector package it instruments.
type DialFunc func(ctx context.Context, rawURI string) (transport.Connection, error)

// Wrapper instruments a DialFunc with dial counters, an in-flight
// gauge, and a latency histogram, labeled by tag.
type Wrapper struct {
	dial DialFunc

	dialTotal   prometheus.Counter
	errTotal    prometheus.Counter
	inFlight    prometheus.Gauge
	dialLatency prometheus.Histogram
	errByCode   *prometheus.CounterVec
}

// Wrap builds a Wrapper around dial and registers its collectors
// against reg. tag identifies the wrapped dialer in metric labels
// (e.g. a scheme or an upstream name).
func Wrap(dial DialFunc, tag string, reg prometheus.Registerer) (*Wrapper, error) {
	lb := map[string]string{"tag": tag}
	w := &Wrapper{
		dial: dial,
		dialTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "connector_dial_total",
			Help:        "The total number of dial attempts made through this connector",
			ConstLabels: lb,
		}),
		errTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "connector_dial_errors_total",
			Help:        "The total number of dial attempts that failed",
			ConstLabels: lb,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "connector_dial_in_flight",
			Help:        "The number of dial attempts currently in flight",
			ConstLabels: lb,
		}),
		dialLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "connector_dial_latency_milliseconds",
			Help:        "The dial latency in milliseconds",
			Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			ConstLabels: lb,
		}),
		errByCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "connector_dial_errors_by_code_total",
			Help:        "The total number of dial failures by symbolic error code",
			ConstLabels: lb,
		}, []string{"code"}),
	}
	for _, c := range []prometheus.Collector{w.dialTotal, w.errTotal, w.inFlight, w.dialLatency, w.errByCode} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Connect satisfies the Connector contract, delegating to the wrapped
// DialFunc while recording metrics around the call.
func (w *Wrapper) Connect(ctx context.Context, rawURI string) (transport.Connection, error) {
	w.dialTotal.Inc()
	w.inFlight.Inc()
	start := time.Now()
	conn, err := w.dial(ctx, rawURI)
	w.inFlight.Dec()

	if err != nil {
		w.errTotal.Inc()
		code := errs.CodeUnknown
		if c, ok := errs.CodeOf(err); ok {
			code = c
		}
		w.errByCode.WithLabelValues(code.String()).Inc()
		return nil, err
	}
	w.dialLatency.Observe(float64(time.Since(start).Milliseconds()))
	return conn, nil
}
