package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "estateledger",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total LedgerService calls.",
		},
		[]string{"method", "code"},
	)
	grpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estateledger",
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "LedgerService call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "estateledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP query API requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estateledger",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP query API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	ledgerRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "estateledger",
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Ledger operations rejected, by error category.",
		},
		[]string{"method", "category"},
	)
	burnWindowsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "estateledger",
			Subsystem: "burnwatch",
			Name:      "expired_total",
			Help:      "Burn windows reported as expired.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(grpcRequests, grpcDuration, httpRequests, httpDuration, ledgerRejections, burnWindowsExpired)
	})
}

func RecordGRPCRequest(method, code string, duration time.Duration) {
	RegisterMetrics()
	grpcRequests.WithLabelValues(method, code).Inc()
	grpcDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

func RecordLedgerRejection(method, category string) {
	RegisterMetrics()
	ledgerRejections.WithLabelValues(method, category).Inc()
}

func RecordBurnWindowExpired() {
	RegisterMetrics()
	burnWindowsExpired.Inc()
}
