package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests           *prometheus.CounterVec
	LatencyMS          *prometheus.HistogramVec
	PurchasesCompleted prometheus.Counter
}

// NewServerMetrics registers the API metrics. A nil registerer uses the
// default registry; tests pass their own to avoid duplicate registration.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehaven",
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coursehaven",
		Subsystem: "api",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method"})
	purchases := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coursehaven",
		Subsystem: "api",
		Name:      "purchases_completed_total",
		Help:      "Total number of newly recorded orders.",
	})

	reg.MustRegister(requests, latency, purchases)
	return &ServerMetrics{
		Requests:           requests,
		LatencyMS:          latency,
		PurchasesCompleted: purchases,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
