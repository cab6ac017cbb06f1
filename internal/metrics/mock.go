package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	recomputeRuns      int
	recomputeFailures  int
	recomputeDurations []float64
	matchesSettled     int
	importsRun         int
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		recomputeDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRecomputeRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeRuns++
}

func (m *Mock) IncRecomputeFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeFailures++
}

func (m *Mock) ObserveRecomputeDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeDurations = append(m.recomputeDurations, duration)
}

func (m *Mock) IncMatchesSettled(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesSettled += count
}

func (m *Mock) IncImportsRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importsRun++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RecomputeRuns returns the number of times IncRecomputeRuns was called.
func (m *Mock) RecomputeRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeRuns
}

// RecomputeFailures returns the number of times IncRecomputeFailures was called.
func (m *Mock) RecomputeFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeFailures
}

// RecomputeDurations returns the observed recompute durations.
func (m *Mock) RecomputeDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.recomputeDurations...)
}

// MatchesSettled returns the running total passed to IncMatchesSettled.
func (m *Mock) MatchesSettled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesSettled
}

// ImportsRun returns the number of times IncImportsRun was called.
func (m *Mock) ImportsRun() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importsRun
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
