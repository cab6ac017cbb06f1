package recompute

import "context"

// MockOrchestrator is a mock implementation of the Orchestrator interface
// for testing.
type MockOrchestrator struct {
	RecomputeAllFunc  func(ctx context.Context) (*Result, error)
	RecomputeAllCalls int
}

// NewMock creates a new mock Orchestrator.
func NewMock() *MockOrchestrator {
	return &MockOrchestrator{}
}

func (m *MockOrchestrator) RecomputeAll(ctx context.Context) (*Result, error) {
	m.RecomputeAllCalls++
	if m.RecomputeAllFunc != nil {
		return m.RecomputeAllFunc(ctx)
	}
	return &Result{}, nil
}
