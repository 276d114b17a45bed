// Package metrics exposes Prometheus counters for conversion activity.
//
// A Collector owns a private registry so that several sessions, tests and
// the CLI never collide on the global default registry. All methods are
// safe to call on a nil *Collector, which records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "fetchqb"

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeRecovered = "recovered"
)

// Collector records parse, serialize and emit counts.
type Collector struct {
	registry *prometheus.Registry

	parseTotal     *prometheus.CounterVec
	serializeTotal *prometheus.CounterVec
	emitTotal      prometheus.Counter
}

// NewCollector registers the fetchqb counters on registry. A nil registry
// gets a fresh private one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "parse_total",
			Help:      "FetchXML documents parsed, by outcome.",
		}, []string{"outcome"}),
		serializeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "serialize_total",
			Help:      "Rule trees serialized, by outcome.",
		}, []string{"outcome"}),
		emitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "emit_total",
			Help:      "Serialized documents handed to the change callback.",
		}),
	}

	registry.MustRegister(c.parseTotal, c.serializeTotal, c.emitTotal)
	return c
}

// Registry returns the registry the counters live on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordParse counts one parse. outcome is OutcomeOK or a decode reason.
func (c *Collector) RecordParse(outcome string) {
	if c == nil {
		return
	}
	c.parseTotal.WithLabelValues(outcome).Inc()
}

// RecordSerialize counts one serialization.
func (c *Collector) RecordSerialize(outcome string) {
	if c == nil {
		return
	}
	c.serializeTotal.WithLabelValues(outcome).Inc()
}

// RecordEmit counts one change callback.
func (c *Collector) RecordEmit() {
	if c == nil {
		return
	}
	c.emitTotal.Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
