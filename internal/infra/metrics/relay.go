package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		relayRequests,
		relayLatencyMs,
		modelAttempts,
		streamChunks,
		streamErrors,
		aiTokensIn,
		aiTokensOut,
	)
}

// Relay modes, used as the "mode" label value.
const (
	ModeLive      = "live"
	ModeSynthetic = "synthetic"
	ModeAllFailed = "all_failed"
	ModeError     = "error"
)

var (
	relayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Chat relay requests by resolution mode.",
		},
		[]string{"mode"},
	)

	relayLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_latency_ms",
			Help:    "Time to resolve a relay request (first byte for live streams).",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"mode"},
	)

	modelAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_model_attempts_total",
			Help: "Candidate model attempts by model and success.",
		},
		[]string{"model", "success"},
	)

	streamChunks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_stream_chunks_total",
			Help: "Decoded text increments forwarded to callers.",
		},
	)

	streamErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_stream_errors_total",
			Help: "Mid-stream failures surfaced as inline error text.",
		},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per model, best-effort counting.",
		},
		[]string{"model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per model, best-effort counting.",
		},
		[]string{"model"},
	)
)

func IncRelayRequest(mode string) { relayRequests.WithLabelValues(mode).Inc() }

func ObserveRelayLatency(mode string, ms float64) {
	relayLatencyMs.WithLabelValues(mode).Observe(ms)
}

func IncModelAttempt(model string, success bool) {
	modelAttempts.WithLabelValues(model, strconv.FormatBool(success)).Inc()
}

func IncStreamChunk() { streamChunks.Inc() }
func IncStreamError() { streamErrors.Inc() }

func AddTokensIn(model string, n int) {
	if n > 0 {
		aiTokensIn.WithLabelValues(model).Add(float64(n))
	}
}

func AddTokensOut(model string, n int) {
	if n > 0 {
		aiTokensOut.WithLabelValues(model).Add(float64(n))
	}
}
