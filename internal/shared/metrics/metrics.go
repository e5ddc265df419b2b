// Package metrics exposes the bot's Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_bot_deliveries_total",
			Help: "Copied messages by kind (files, broadcast, republish) and result.",
		},
		[]string{"kind", "result"},
	)

	Intake = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_bot_intake_events_total",
			Help: "Source channel posts handled by the intake pipeline.",
		},
		[]string{"event"},
	)

	Lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_bot_lookups_total",
			Help: "Keyword lookups by outcome.",
		},
		[]string{"outcome"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keyword_bot_rate_limited_total",
			Help: "Telegram calls rejected with retry_after.",
		},
	)
)

func init() {
	prometheus.MustRegister(Deliveries)
	prometheus.MustRegister(Intake)
	prometheus.MustRegister(Lookups)
	prometheus.MustRegister(RateLimited)
}

// Result maps an error to a result label
func Result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
