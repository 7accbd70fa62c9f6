package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	llmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "llm_requests_total",
			Help:      "Count of chat completion requests by outcome.",
		},
		[]string{"outcome"},
	)

	toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "tool_calls_total",
			Help:      "Count of tool invocations requested by the model.",
		},
		[]string{"tool", "outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "bookings_total",
			Help:      "Count of booking attempts by status.",
		},
		[]string{"status"},
	)

	cancellations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "cancellations_total",
			Help:      "Count of cancellation attempts by status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(llmRequests, toolCalls, bookings, cancellations)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

func IncLLMRequest(outcome string) {
	llmRequests.WithLabelValues(outcome).Inc()
}

func IncToolCall(tool, outcome string) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}

func IncCancellation(status string) {
	cancellations.WithLabelValues(status).Inc()
}
