package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRecomputeRuns()
	IncRecomputeFailures()
	ObserveRecomputeDuration(duration float64)
	IncMatchesSettled(count int)
	IncImportsRun()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
