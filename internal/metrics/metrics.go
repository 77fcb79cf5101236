// Package metrics provides Prometheus metrics for compilations and the
// inspection server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shapec"

// Compilation results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultCached  = "cached"
)

// Collector holds all Prometheus metrics for shapec.
type Collector struct {
	// Compilation metrics
	CompilationsTotal *prometheus.CounterVec
	CompileDuration   prometheus.Histogram
	RecordsEmitted    prometheus.Counter
	RecordRenames     prometheus.Counter
	CacheHits         prometheus.Counter

	// Server metrics
	RequestsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates a collector on its own registry, leaving the global default
// registry untouched.
func New() *Collector {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry creates a collector registering on reg and exposing g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		CompilationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Total number of service compilations by result",
			},
			[]string{"result"},
		),
		CompileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Service compilation duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		RecordsEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_emitted_total",
				Help:      "Total number of records emitted by compilations",
			},
		),
		RecordRenames: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_renames_total",
				Help:      "Total number of request/response record renames",
			},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of compilations served from the cache",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of inspection API requests",
			},
			[]string{"route", "status"},
		),
		gatherer: g,
	}
}

// ObserveCompile records one finished compilation.
func (c *Collector) ObserveCompile(result string, records, renames int, d time.Duration) {
	c.CompilationsTotal.WithLabelValues(result).Inc()
	c.CompileDuration.Observe(d.Seconds())
	if result == ResultCached {
		c.CacheHits.Inc()
	}
	c.RecordsEmitted.Add(float64(records))
	c.RecordRenames.Add(float64(renames))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Gather returns the current metric families.
func (c *Collector) Gather() (map[string]float64, error) {
	families, err := c.gatherer.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			name := f.GetName()
			for _, l := range m.GetLabel() {
				name += "{" + l.GetName() + "=" + l.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[name] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[name] = float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				out[name] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}
