package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamSeconds  *prometheus.HistogramVec
	Fallbacks        *prometheus.CounterVec
	RequestErrors    *prometheus.CounterVec
	UpstreamUp       *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinforecast_upstream_requests_total",
			Help: "Total number of requests sent to upstream providers, by outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinforecast_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream providers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		Fallbacks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinforecast_fallbacks_total",
			Help: "Total number of responses answered with synthetic data.",
		}, []string{"service", "reason"}),
		RequestErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinforecast_request_errors_total",
			Help: "Total number of requests answered with an error, by error kind.",
		}, []string{"kind"}),
		UpstreamUp: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "pinforecast_upstream_up",
			Help: "Result of the last upstream probe (1 = reachable).",
		}, []string{"provider"}),
	}
}
