// Package metrics provides Prometheus instrumentation for the marketplace
// client. It exposes a gauge for the live chat connection, counters for
// frame and request throughput, and histograms for latency tracking.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LiveConnections tracks the number of open realtime connections.
	// A session holds at most one; anything higher is a bug.
	LiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "market_chat_live_connections",
		Help: "Current number of open realtime chat connections",
	})

	// FramesTotal counts chat frames, labeled by direction: "sent",
	// "received", or "dropped" (send attempted with no live connection).
	FramesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "market_chat_frames_total",
		Help: "Total number of chat frames processed",
	}, []string{"direction"}) // direction = "sent", "received", "dropped"

	// HistoryFetchDuration records chat history fetch latency in seconds.
	HistoryFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "market_chat_history_fetch_seconds",
		Help:    "Chat history fetch latency in seconds",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// RequestsTotal counts REST calls against the backend, labeled by HTTP
	// method and response status class ("2xx", "4xx", "5xx", "error").
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "market_api_requests_total",
		Help: "Total number of REST requests issued",
	}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(
		LiveConnections,
		FramesTotal,
		HistoryFetchDuration,
		RequestsTotal,
	)
}

// StatusClass buckets an HTTP status code for the RequestsTotal label.
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "other"
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
