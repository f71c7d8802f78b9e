package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the service exports. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	QueryResultSize     prometheus.Histogram
	QueryMatched        prometheus.Histogram
	StoreLoadsTotal     *prometheus.CounterVec
	StoreRecords        prometheus.Gauge
	GeneratorDuration   prometheus.Histogram
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kuyua_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kuyua_http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		}, []string{"route"}),
		QueryResultSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kuyua_query_page_features",
			Help:    "Number of features returned in a /locations page",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		QueryMatched: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kuyua_query_matched_features",
			Help:    "Number of features matching the filters of a /locations request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		StoreLoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kuyua_store_loads_total",
			Help: "Location store load attempts by outcome",
		}, []string{"outcome"}),
		StoreRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "kuyua_store_records",
			Help: "Number of records held by the location store",
		}),
		GeneratorDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kuyua_generator_duration_seconds",
			Help:    "Duration of synthetic location generation",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (c *Collector) ObserveRequest(route, method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequestsTotal.WithLabelValues(route, method, statusLabel(status)).Inc()
	c.HTTPRequestDuration.WithLabelValues(route).Observe(float64(d.Milliseconds()))
}

func (c *Collector) ObserveQuery(returned, matched int) {
	if c == nil {
		return
	}
	c.QueryResultSize.Observe(float64(returned))
	c.QueryMatched.Observe(float64(matched))
}

func (c *Collector) ObserveLoad(outcome string, records int) {
	if c == nil {
		return
	}
	c.StoreLoadsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.StoreRecords.Set(float64(records))
	}
}

func (c *Collector) ObserveGeneration(d time.Duration) {
	if c == nil {
		return
	}
	c.GeneratorDuration.Observe(d.Seconds())
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
