package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	RecomputeRuns      prometheus.Counter
	RecomputeFailures  prometheus.Counter
	RecomputeDuration  prometheus.Histogram
	MatchesSettled     prometheus.Counter
	ImportsRun         prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
