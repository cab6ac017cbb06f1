package recompute

import "context"

// Orchestrator defines the interface for triggering a full rating rebuild.
// This decouples the HTTP and CLI surfaces from the concrete Recomputer.
type Orchestrator interface {
	RecomputeAll(ctx context.Context) (*Result, error)
}
