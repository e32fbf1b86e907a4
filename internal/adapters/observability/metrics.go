package observability

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "snapshots", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapshots", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "snapshots", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapshots", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "snapshots", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	SnapshotOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "snapshots", Name: "outcomes_total", Help: "Per-booking snapshot outcomes."},
		[]string{"outcome", "reason"}, // outcome: decoded|degraded
	)
	FanoutSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snapshots", Name: "fanout_batch_size",
			Help:    "Bookings per composeMany batch.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
	FanoutLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snapshots", Name: "fanout_duration_seconds",
			Help:    "Wall time of a composeMany batch.",
			Buckets: prometheus.DefBuckets,
		},
	)
	WarmEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "snapshots", Name: "warm_events_total", Help: "Cache warmer results."},
		[]string{"result"}, // result: warmed|skipped|miss|failed|malformed
	)
)

// Serve exposes reg on its own listener. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		SnapshotOutcomes, FanoutSize, FanoutLatency, WarmEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveSnapshot counts one composed booking. reason is empty for decoded.
func ObserveSnapshot(outcome, reason string) {
	SnapshotOutcomes.WithLabelValues(outcome, reason).Inc()
}

func ObserveFanout(size int, dur time.Duration) {
	FanoutSize.Observe(float64(size))
	FanoutLatency.Observe(dur.Seconds())
}

func ObserveWarm(result string) {
	WarmEvents.WithLabelValues(result).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
