package rating_test

import (
	"math"
	"testing"

	"github.com/rvilhelmsen/beachrank/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evenMatch(id string) rating.Match {
	return rating.Match{
		ID:     id,
		Date:   "6/1/2024",
		TeamA:  [2]string{"Anna", "Bo"},
		TeamB:  [2]string{"Carl", "Dina"},
		ScoreA: 21,
		ScoreB: 15,
	}
}

func TestCompute_EvenTeamsBinaryMode(t *testing.T) {
	// Four fresh players at 1200, even expectation, K=40: the winning team
	// gains exactly K * (1 - 0.5) = 20 per player.
	res, err := rating.Compute([]rating.Match{evenMatch("m1")}, rating.DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 1220, res.Final["Anna"], 1e-9)
	assert.InDelta(t, 1220, res.Final["Bo"], 1e-9)
	assert.InDelta(t, 1180, res.Final["Carl"], 1e-9)
	assert.InDelta(t, 1180, res.Final["Dina"], 1e-9)

	deltas := res.Deltas["m1"]
	assert.InDelta(t, 20, deltas.TeamA, 1e-9)
	assert.InDelta(t, -20, deltas.TeamB, 1e-9)

	require.Len(t, res.Changes, 4)
	assert.Equal(t, "Anna", res.Changes[0].Player)
	assert.InDelta(t, 1220, res.Changes[0].RatingAfter, 1e-9)
	assert.InDelta(t, 20, res.Changes[0].Delta, 1e-9)
}

func TestCompute_ConservationPerMatch(t *testing.T) {
	matches := []rating.Match{
		evenMatch("m1"),
		{ID: "m2", Date: "6/2/2024", TeamA: [2]string{"Anna", "Carl"}, TeamB: [2]string{"Bo", "Dina"}, ScoreA: 18, ScoreB: 21},
		{ID: "m3", Date: "6/3/2024", TeamA: [2]string{"Anna", "Dina"}, TeamB: [2]string{"Bo", "Erik"}, ScoreA: 21, ScoreB: 19},
	}
	res, err := rating.Compute(matches, rating.DefaultConfig())
	require.NoError(t, err)

	for id, d := range res.Deltas {
		assert.InDelta(t, 0, d.TeamA+d.TeamB, 1e-9, "match %s should be zero-sum per team", id)
	}

	// Zero-sum per team and two players per team means the whole league pool
	// is conserved as well.
	total := 0.0
	for _, r := range res.Final {
		total += r - 1200
	}
	assert.InDelta(t, 0, total, 1e-9)
}

func TestCompute_SequentialOrderMatters(t *testing.T) {
	// m2 pits winners of m1 against one loser and a newcomer, so its team
	// averages are uneven only after m1 has been applied.
	a := []rating.Match{
		{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 10},
		{ID: "m2", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Erik"}, ScoreA: 21, ScoreB: 18},
	}
	b := []rating.Match{a[1], a[0]}

	resA, err := rating.Compute(a, rating.DefaultConfig())
	require.NoError(t, err)
	resB, err := rating.Compute(b, rating.DefaultConfig())
	require.NoError(t, err)

	// Played first, m2 is an even 1200-vs-1200 match worth exactly K/2.
	// Played after m1, Anna and Bo are favourites and gain less.
	assert.InDelta(t, 20, resB.Deltas["m2"].TeamA, 1e-9)
	assert.Less(t, resA.Deltas["m2"].TeamA, 20.0)
	assert.Greater(t, math.Abs(resA.Deltas["m2"].TeamA-resB.Deltas["m2"].TeamA), 1e-6,
		"swapping the order must change the deltas applied for m2")
}

func TestCompute_Deterministic(t *testing.T) {
	matches := []rating.Match{
		evenMatch("m1"),
		{ID: "m2", Date: "6/2/2024", TeamA: [2]string{"Anna", "Carl"}, TeamB: [2]string{"Bo", "Dina"}, ScoreA: 14, ScoreB: 21},
	}
	first, err := rating.Compute(matches, rating.DefaultConfig())
	require.NoError(t, err)
	second, err := rating.Compute(matches, rating.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Final, second.Final)
	assert.Equal(t, first.Changes, second.Changes)
	assert.Equal(t, first.Deltas, second.Deltas)
}

func TestCompute_FirstMatchUsesInitialRating(t *testing.T) {
	cfg := rating.DefaultConfig()
	cfg.InitialRating = 1500
	res, err := rating.Compute([]rating.Match{evenMatch("m1")}, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1520, res.Final["Anna"], 1e-9)
}

func TestCompute_PointDifferentialMode(t *testing.T) {
	cfg := rating.DefaultConfig()
	cfg.UsePointDifferential = true

	blowout := rating.Match{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 5}
	narrow := rating.Match{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 19}
	shutout := rating.Match{ID: "m1", Date: "6/1/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 21, ScoreB: 0}

	resBlowout, err := rating.Compute([]rating.Match{blowout}, cfg)
	require.NoError(t, err)
	resNarrow, err := rating.Compute([]rating.Match{narrow}, cfg)
	require.NoError(t, err)
	resShutout, err := rating.Compute([]rating.Match{shutout}, cfg)
	require.NoError(t, err)

	dBlowout := resBlowout.Deltas["m1"].TeamA
	dNarrow := resNarrow.Deltas["m1"].TeamA
	dShutout := resShutout.Deltas["m1"].TeamA
	assert.Greater(t, dBlowout, dNarrow, "a bigger margin should move ratings more")
	assert.Greater(t, dShutout, dBlowout)
	assert.Greater(t, dNarrow, 0.0)
	assert.Less(t, dShutout, cfg.K/2, "even a shutout keeps the actual score inside (0,1)")
}

func TestCompute_FailsFastOnInvalidMatch(t *testing.T) {
	matches := []rating.Match{
		evenMatch("m1"),
		{ID: "bad", Date: "6/2/2024", TeamA: [2]string{"Anna", "Bo"}, TeamB: [2]string{"Carl", "Dina"}, ScoreA: 15, ScoreB: 15},
		evenMatch("m3"),
	}
	res, err := rating.Compute(matches, rating.DefaultConfig())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, rating.ErrTiedScore)
	assert.Contains(t, err.Error(), "bad", "the error should identify the offending match")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*rating.Match)
		wantErr error
	}{
		{"valid", func(m *rating.Match) {}, nil},
		{"duplicate player", func(m *rating.Match) { m.TeamB[1] = "Anna" }, rating.ErrDuplicatePlayer},
		{"tied score", func(m *rating.Match) { m.ScoreB = m.ScoreA }, rating.ErrTiedScore},
		{"negative score", func(m *rating.Match) { m.ScoreB = -1 }, rating.ErrNegativeScore},
		{"empty slot", func(m *rating.Match) { m.TeamA[0] = "" }, rating.ErrEmptyPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := evenMatch("m1")
			tt.mutate(&m)
			err := rating.Validate(m)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCompute_NoIntermediateRounding(t *testing.T) {
	// A long uneven history accumulates fractional deltas; make sure two
	// replays agree bit for bit, not just to a tolerance.
	var matches []rating.Match
	players := [][2][2]string{
		{{"Anna", "Bo"}, {"Carl", "Dina"}},
		{{"Anna", "Carl"}, {"Bo", "Erik"}},
		{{"Dina", "Erik"}, {"Anna", "Bo"}},
	}
	for i := 0; i < 60; i++ {
		p := players[i%len(players)]
		matches = append(matches, rating.Match{
			ID:     string(rune('a'+i%26)) + "-" + string(rune('0'+i%10)) + "-" + string(rune('A'+i/26)),
			Date:   "7/1/2024",
			TeamA:  p[0],
			TeamB:  p[1],
			ScoreA: 21,
			ScoreB: 10 + i%10,
		})
	}
	first, err := rating.Compute(matches, rating.DefaultConfig())
	require.NoError(t, err)
	second, err := rating.Compute(matches, rating.DefaultConfig())
	require.NoError(t, err)
	for player, r := range first.Final {
		assert.Equal(t, math.Float64bits(r), math.Float64bits(second.Final[player]), "player %s", player)
	}
}
