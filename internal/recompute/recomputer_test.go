package recompute

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rvilhelmsen/beachrank/internal/database"
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/pubsub"
	"github.com/rvilhelmsen/beachrank/internal/rating"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/rvilhelmsen/beachrank/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sql.DB
	store   league.Store
	views   standings.Store
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
	rec     *Recomputer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err, "Failed to initialize test database")
	t.Cleanup(teardown)

	f := &fixture{
		db:      db,
		store:   league.New(db),
		views:   standings.New(db),
		metrics: metrics.NewMock(),
		pubsub:  pubsub.NewMock(),
	}
	f.rec = New(db, f.store, f.views, rating.DefaultConfig(), f.metrics, f.pubsub)
	return f
}

func (f *fixture) settleMatches(t *testing.T, date string, subs ...league.MatchSubmission) {
	t.Helper()
	session, err := f.store.CreateSession(date)
	require.NoError(t, err)
	for _, sub := range subs {
		_, err := f.store.AddMatch(session.ID, sub)
		require.NoError(t, err)
	}
	_, err = f.store.SettleSession(session.ID)
	require.NoError(t, err)
}

func sub(date string, t1a, t1b, t2a, t2b string, s1, s2 int) league.MatchSubmission {
	return league.MatchSubmission{
		Date:       date,
		Team1:      [2]string{t1a, t1b},
		Team2:      [2]string{t2a, t2b},
		Team1Score: s1,
		Team2Score: s2,
	}
}

func TestRecomputeAll(t *testing.T) {
	f := setup(t)
	f.settleMatches(t, "2025-06-01",
		sub("2025-06-01", "Anna", "Bo", "Carl", "Dina", 21, 15),
		sub("2025-06-01", "Anna", "Carl", "Bo", "Dina", 18, 21),
	)

	result, err := f.rec.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.PlayerCount)
	assert.Equal(t, 2, result.MatchCount)

	board, err := f.views.Leaderboard()
	require.NoError(t, err)
	require.Len(t, board, 4)
	for _, p := range board {
		assert.Equal(t, 2, p.Games)
	}

	// Both matches carry the deltas written by the pass.
	settled, err := f.store.SettledMatches()
	require.NoError(t, err)
	require.Len(t, settled, 2)
	for _, m := range settled {
		assert.NotZero(t, m.Team1Delta)
		assert.InDelta(t, -m.Team1Delta, m.Team2Delta, 1e-9, "Per-match deltas should be zero-sum")
	}

	assert.Equal(t, 1, f.metrics.RecomputeRuns())
	assert.Equal(t, 0, f.metrics.RecomputeFailures())
	require.Len(t, f.pubsub.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventRecomputeCompleted), f.pubsub.SendMessageCalls[0].Topic)
}

func TestRecomputeAllEmptyHistory(t *testing.T) {
	f := setup(t)

	result, err := f.rec.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.PlayerCount)
	assert.Equal(t, 0, result.MatchCount)

	board, err := f.views.Leaderboard()
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestRecomputeAllDeterministic(t *testing.T) {
	f := setup(t)
	f.settleMatches(t, "2025-06-01",
		sub("2025-06-01", "Anna", "Bo", "Carl", "Dina", 21, 15),
		sub("2025-06-01", "Carl", "Dina", "Anna", "Bo", 21, 19),
		sub("2025-06-01", "Anna", "Carl", "Bo", "Dina", 25, 23),
	)

	_, err := f.rec.RecomputeAll(context.Background())
	require.NoError(t, err)
	first, err := f.views.Leaderboard()
	require.NoError(t, err)
	firstTimeline, err := f.views.Timeline()
	require.NoError(t, err)

	_, err = f.rec.RecomputeAll(context.Background())
	require.NoError(t, err)
	second, err := f.views.Leaderboard()
	require.NoError(t, err)
	secondTimeline, err := f.views.Timeline()
	require.NoError(t, err)

	assert.Equal(t, first, second, "Re-running over unchanged history should reproduce identical rows")
	assert.Equal(t, firstTimeline, secondTimeline)
}

func TestRecomputeAllBusy(t *testing.T) {
	f := setup(t)

	release := make(chan struct{})
	started := make(chan struct{})
	views := standings.NewMockStore()
	views.ReplaceAllFunc = func(tx *sql.Tx, agg *stats.Aggregates, playerIDs map[string]string) error {
		close(started)
		<-release
		return nil
	}
	rec := New(f.db, f.store, views, rating.DefaultConfig(), f.metrics, f.pubsub)

	done := make(chan error, 1)
	go func() {
		_, err := rec.RecomputeAll(context.Background())
		done <- err
	}()
	<-started

	_, err := rec.RecomputeAll(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestRecomputeFailureKeepsPreviousRows(t *testing.T) {
	f := setup(t)
	f.settleMatches(t, "2025-06-01",
		sub("2025-06-01", "Anna", "Bo", "Carl", "Dina", 21, 15),
	)
	_, err := f.rec.RecomputeAll(context.Background())
	require.NoError(t, err)

	// A store that serves an invalid match fails the rating pass before the
	// swap transaction commits anything.
	badStore := league.NewMock()
	badStore.SettledMatchesFunc = func() ([]league.Match, error) {
		return []league.Match{{
			ID:    "bad",
			Date:  "2025-06-02",
			Team1: [2]league.PlayerRef{{ID: "p1", Name: "Anna"}, {ID: "p2", Name: "Bo"}},
			Team2: [2]league.PlayerRef{{ID: "p3", Name: "Carl"}, {ID: "p4", Name: "Dina"}},
			// Tied scores are invalid.
			Team1Score: 21,
			Team2Score: 21,
		}}, nil
	}
	rec := New(f.db, badStore, f.views, rating.DefaultConfig(), f.metrics, f.pubsub)

	_, err = rec.RecomputeAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	board, err := f.views.Leaderboard()
	require.NoError(t, err)
	assert.Len(t, board, 4, "A failed pass should leave the previous derived rows intact")
	assert.Equal(t, 1, f.metrics.RecomputeFailures())
}
