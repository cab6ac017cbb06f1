package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RecomputeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beachrank_recompute_runs_total",
			Help: "The total number of full rating recomputes started.",
		}),
		RecomputeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beachrank_recompute_failures_total",
			Help: "The total number of rating recomputes that failed.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beachrank_recompute_duration_seconds",
			Help:    "The duration of full rating recomputes.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		MatchesSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beachrank_matches_settled_total",
			Help: "The total number of matches locked into settled history.",
		}),
		ImportsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beachrank_imports_total",
			Help: "The total number of spreadsheet imports applied.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beachrank_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beachrank_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beachrank_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RecomputeRuns,
		s.RecomputeFailures,
		s.RecomputeDuration,
		s.MatchesSettled,
		s.ImportsRun,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRecomputeRuns() {
	s.RecomputeRuns.Inc()
}

func (s *Service) IncRecomputeFailures() {
	s.RecomputeFailures.Inc()
}

func (s *Service) ObserveRecomputeDuration(duration float64) {
	s.RecomputeDuration.Observe(duration)
}

func (s *Service) IncMatchesSettled(count int) {
	s.MatchesSettled.Add(float64(count))
}

func (s *Service) IncImportsRun() {
	s.ImportsRun.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
