package recompute

import (
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/pubsub"
	"github.com/rvilhelmsen/beachrank/internal/rating"
	"github.com/rvilhelmsen/beachrank/internal/standings"
)

// Recomputer rebuilds every derived table from the settled history in one
// transaction. Only one pass may run at a time.
type Recomputer struct {
	db      *sql.DB
	store   league.Store
	views   standings.Store
	cfg     rating.Config
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
	running atomic.Bool
}

// Result summarizes a completed recompute pass.
type Result struct {
	PlayerCount int           `json:"player_count"`
	MatchCount  int           `json:"match_count"`
	Duration    time.Duration `json:"duration"`
}
