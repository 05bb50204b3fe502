package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StreamReconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_stream_reconnects_total",
			Help: "Reconnection attempts scheduled per stream",
		},
		[]string{"stream"},
	)

	StreamEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_stream_events_total",
			Help: "Named events delivered per stream",
		},
		[]string{"stream", "event"},
	)

	DroppedPayloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_stream_dropped_payloads_total",
			Help: "Events dropped because their payload failed to decode",
		},
		[]string{"stream", "event"},
	)

	RoundOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_round_outcomes_total",
			Help: "Finished rounds by outcome",
		},
		[]string{"outcome"},
	)

	AnswerSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answer_submissions_total",
			Help: "Answer submission attempts by status",
		},
		[]string{"status"},
	)
)

// Init registers the collectors with the default registry. Call once from an
// entrypoint; library code only increments.
func Init() {
	prometheus.MustRegister(StreamReconnects)
	prometheus.MustRegister(StreamEvents)
	prometheus.MustRegister(DroppedPayloads)
	prometheus.MustRegister(RoundOutcomes)
	prometheus.MustRegister(AnswerSubmissions)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
