package stats_test

import (
	"testing"

	"github.com/rvilhelmsen/beachrank/internal/rating"
	"github.com/rvilhelmsen/beachrank/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeBoth(t *testing.T, matches []rating.Match) *stats.Aggregates {
	t.Helper()
	cfg := rating.DefaultConfig()
	res, err := rating.Compute(matches, cfg)
	require.NoError(t, err)
	agg, err := stats.Compute(matches, res, cfg)
	require.NoError(t, err)
	return agg
}

func summary(t *testing.T, agg *stats.Aggregates, name string) stats.PlayerSummary {
	t.Helper()
	for _, p := range agg.Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("player %s not in summaries", name)
	return stats.PlayerSummary{}
}

func TestCompute_PointsRewardParticipation(t *testing.T) {
	agg := computeBoth(t, []rating.Match{
		{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 15},
	})

	anna := summary(t, agg, "Anna")
	carl := summary(t, agg, "Carl")
	assert.Equal(t, 3, anna.Points)
	assert.Equal(t, 1, carl.Points)
	assert.Equal(t, 1, anna.Wins)
	assert.Equal(t, 0, carl.Wins)
	assert.InDelta(t, 6, anna.AvgPointDiff, 1e-9)
	assert.InDelta(t, -6, carl.AvgPointDiff, 1e-9)
	assert.InDelta(t, 1220, anna.Rating, 1e-9)
	assert.InDelta(t, 1180, carl.Rating, 1e-9)
}

func TestCompute_PairRows(t *testing.T) {
	agg := computeBoth(t, []rating.Match{
		{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 15},
		{ID: "m2", Date: "6/2/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Erik"}, ScoreA: 17, ScoreB: 21},
	})

	var annaBo *stats.PairStat
	for i := range agg.Partners {
		p := &agg.Partners[i]
		if p.Player == "Anna" && p.Other == "Bo" {
			annaBo = p
		}
	}
	require.NotNil(t, annaBo, "partner row Anna/Bo should exist")
	assert.Equal(t, 2, annaBo.Games)
	assert.Equal(t, 1, annaBo.Wins)
	assert.Equal(t, 4, annaBo.Points)
	assert.InDelta(t, 0.5, annaBo.WinRate, 1e-9)
	assert.InDelta(t, 1, annaBo.AvgPointDiff, 1e-9) // +6 then -4 over two games

	var annaCarl *stats.PairStat
	for i := range agg.Opponents {
		p := &agg.Opponents[i]
		if p.Player == "Anna" && p.Other == "Carl" {
			annaCarl = p
		}
	}
	require.NotNil(t, annaCarl, "opponent row Anna/Carl should exist")
	assert.Equal(t, 2, annaCarl.Games)
	assert.Equal(t, 1, annaCarl.Wins)

	// Erik only faced Anna once.
	for _, p := range agg.Opponents {
		if p.Player == "Anna" && p.Other == "Erik" {
			assert.Equal(t, 1, p.Games)
			assert.Equal(t, 0, p.Wins)
		}
	}
}

func TestCompute_TimelineJoinsMatchContext(t *testing.T) {
	agg := computeBoth(t, []rating.Match{
		{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 15},
	})

	require.Len(t, agg.Timeline, 4)
	first := agg.Timeline[0]
	assert.Equal(t, 0, first.Ordinal)
	assert.Equal(t, "Anna", first.Player)
	assert.Equal(t, "Bo", first.Partner)
	assert.Equal(t, "Carl", first.Opponent1)
	assert.Equal(t, "Dina", first.Opponent2)
	assert.True(t, first.Won)
	assert.Equal(t, 21, first.OwnScore)
	assert.Equal(t, 15, first.OtherScore)

	carl := agg.Timeline[2]
	assert.Equal(t, "Carl", carl.Player)
	assert.Equal(t, "Dina", carl.Partner)
	assert.False(t, carl.Won)
	assert.Equal(t, 15, carl.OwnScore)
}

func TestSortLeaderboard_FourKeyTieBreak(t *testing.T) {
	rows := []stats.PlayerSummary{
		{Name: "ByRating", Points: 10, AvgPointDiff: 2, WinRate: 0.5, Rating: 1210},
		{Name: "Top", Points: 12, AvgPointDiff: -5, WinRate: 0.1, Rating: 1100},
		{Name: "ByWinRate", Points: 10, AvgPointDiff: 2, WinRate: 0.6, Rating: 1190},
		{Name: "ByDiff", Points: 10, AvgPointDiff: 3, WinRate: 0.4, Rating: 1150},
		{Name: "AEqual", Points: 10, AvgPointDiff: 2, WinRate: 0.5, Rating: 1210},
	}
	stats.SortLeaderboard(rows)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	// Points beats everything; then avg diff, then win rate, then rating.
	// AEqual ties ByRating on all four keys and sorts first by name.
	assert.Equal(t, []string{"Top", "ByDiff", "ByWinRate", "AEqual", "ByRating"}, names)
}

func TestCompute_WinRateDerivedOnce(t *testing.T) {
	matches := []rating.Match{
		{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 15},
		{ID: "m2", Date: "6/2/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 12, ScoreB: 21},
		{ID: "m3", Date: "6/3/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 18},
	}
	agg := computeBoth(t, matches)
	anna := summary(t, agg, "Anna")
	assert.Equal(t, 3, anna.Games)
	assert.Equal(t, 2, anna.Wins)
	assert.InDelta(t, 2.0/3.0, anna.WinRate, 1e-12)
	assert.InDelta(t, (6.0-9.0+3.0)/3.0, anna.AvgPointDiff, 1e-12)
	assert.Equal(t, 2*3+1*1, anna.Points)
}

func TestCompute_RejectsInvalidMatch(t *testing.T) {
	cfg := rating.DefaultConfig()
	good := rating.Match{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 15}
	res, err := rating.Compute([]rating.Match{good}, cfg)
	require.NoError(t, err)

	bad := good
	bad.ID = "m2"
	bad.ScoreB = bad.ScoreA
	_, err = stats.Compute([]rating.Match{good, bad}, res, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, rating.ErrTiedScore)
}
