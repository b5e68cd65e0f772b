// Package observability exports csrgo metrics to Prometheus.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/csrgo/core"
)

// PrometheusObserver implements core.MetricsObserver.
type PrometheusObserver struct {
	buildLatency *prometheus.HistogramVec
	buildEdges   prometheus.Counter
	scanLatency  *prometheus.HistogramVec
	opens        *prometheus.CounterVec
	openBytes    prometheus.Counter
	openLatency  prometheus.Histogram
}

var _ core.MetricsObserver = (*PrometheusObserver)(nil)

// NewPrometheusObserver creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer. Registering twice with the
// same registerer panics.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		buildLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "csrgo_build_duration_seconds",
			Help:    "Duration of CSR builds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
		buildEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csrgo_build_edges_total",
			Help: "Edges placed by successful builds",
		}),
		scanLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "csrgo_scan_duration_seconds",
			Help:    "Duration of scans and traversals",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csrgo_image_opens_total",
			Help: "Images opened or loaded",
		}, []string{"status"}),
		openBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csrgo_image_open_bytes_total",
			Help: "Bytes of successfully opened images",
		}),
		openLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "csrgo_image_open_duration_seconds",
			Help:    "Duration of image opens",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(o.buildLatency, o.buildEdges, o.scanLatency, o.opens, o.openBytes, o.openLatency)
	return o
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (o *PrometheusObserver) OnBuild(_, edges int, d time.Duration, err error) {
	o.buildLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		o.buildEdges.Add(float64(edges))
	}
}

func (o *PrometheusObserver) OnScan(kind core.ScanKind, d time.Duration) {
	o.scanLatency.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (o *PrometheusObserver) OnOpen(bytes int64, d time.Duration, err error) {
	o.opens.WithLabelValues(status(err)).Inc()
	o.openLatency.Observe(d.Seconds())
	if err == nil {
		o.openBytes.Add(float64(bytes))
	}
}
