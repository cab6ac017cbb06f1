package recompute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/pubsub"
	"github.com/rvilhelmsen/beachrank/internal/rating"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/rvilhelmsen/beachrank/internal/stats"
)

// ErrBusy is returned when a recompute is requested while another pass holds
// the lock. Callers should retry once the running pass finishes.
var ErrBusy = errors.New("recompute already in progress")

var _ Orchestrator = (*Recomputer)(nil)

// New creates a new Recomputer.
func New(db *sql.DB, store league.Store, views standings.Store, cfg rating.Config, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Recomputer {
	return &Recomputer{
		db:      db,
		store:   store,
		views:   views,
		cfg:     cfg,
		metrics: metrics,
		pubsub:  pubsub,
	}
}

// RecomputeAll replays the full settled history in replay order and replaces
// every derived table in a single transaction. A failed pass leaves the
// previous derived rows untouched.
func (r *Recomputer) RecomputeAll(ctx context.Context) (*Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.running.Store(false)

	start := time.Now()
	r.metrics.IncRecomputeRuns()
	log.Info("Starting full recompute...")

	result, err := r.recompute(ctx)
	duration := time.Since(start)
	r.metrics.ObserveRecomputeDuration(duration.Seconds())

	if err != nil {
		r.metrics.IncRecomputeFailures()
		log.Error("Recompute failed", "error", err, "duration", duration)
		return nil, err
	}
	result.Duration = duration

	log.Info("Recompute finished", "players", result.PlayerCount, "matches", result.MatchCount, "duration", duration)
	if err := r.pubsub.SendMessage(pubsub.EventRecomputeCompleted, pubsub.RecomputeCompletedEvent{
		PlayerCount: result.PlayerCount,
		MatchCount:  result.MatchCount,
		DurationSec: duration.Seconds(),
	}); err != nil {
		// The derived tables are already committed; a lost event is not
		// worth failing the pass over.
		log.Error("Failed to publish recompute event", "error", err)
	}
	return result, nil
}

func (r *Recomputer) recompute(ctx context.Context) (*Result, error) {
	settled, err := r.store.SettledMatches()
	if err != nil {
		return nil, fmt.Errorf("failed to load settled matches: %w", err)
	}

	ratingMatches, playerIDs := toRatingMatches(settled)
	res, err := rating.Compute(ratingMatches, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("rating pass failed: %w", err)
	}
	agg, err := stats.Compute(ratingMatches, res, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("aggregation pass failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin swap transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.views.ReplaceAll(tx, agg, playerIDs); err != nil {
		return nil, fmt.Errorf("failed to replace derived tables: %w", err)
	}
	if err := r.store.ApplyTeamDeltas(tx, res.Deltas); err != nil {
		return nil, fmt.Errorf("failed to write match deltas: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swap transaction: %w", err)
	}

	return &Result{
		PlayerCount: len(agg.Players),
		MatchCount:  len(settled),
	}, nil
}

// toRatingMatches converts stored match rows, already in replay order, into
// the engine's shape, and collects the name-to-id mapping the derived tables
// are keyed by.
func toRatingMatches(settled []league.Match) ([]rating.Match, map[string]string) {
	out := make([]rating.Match, 0, len(settled))
	ids := make(map[string]string)
	for _, m := range settled {
		out = append(out, rating.Match{
			ID:     m.ID,
			Date:   m.Date,
			TeamA:  [2]string{m.Team1[0].Name, m.Team1[1].Name},
			TeamB:  [2]string{m.Team2[0].Name, m.Team2[1].Name},
			ScoreA: m.Team1Score,
			ScoreB: m.Team2Score,
		})
		for _, ref := range [...]league.PlayerRef{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]} {
			ids[ref.Name] = ref.ID
		}
	}
	return out, ids
}
