// Package rating implements the sequential team-averaged Elo computation.
// The engine is a pure function of its input: no storage, no clock, no
// package state. Replaying the same match list always produces identical
// output, which is what the recompute pipeline's correctness rests on.
package rating

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDuplicatePlayer = errors.New("duplicate player across match slots")
	ErrTiedScore       = errors.New("tied score is not a valid result")
	ErrNegativeScore   = errors.New("negative score")
	ErrEmptyPlayer     = errors.New("empty player slot")
)

// Validate checks a single match against the structural invariants: four
// distinct named players, non-negative scores, exactly one winner.
func Validate(m Match) error {
	seen := make(map[string]struct{}, 4)
	for _, p := range m.Players() {
		if p == "" {
			return ErrEmptyPlayer
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p)
		}
		seen[p] = struct{}{}
	}
	if m.ScoreA < 0 || m.ScoreB < 0 {
		return ErrNegativeScore
	}
	if m.ScoreA == m.ScoreB {
		return ErrTiedScore
	}
	return nil
}

// expectedScore is the Elo expectation for a team rated ratingA against one
// rated ratingB.
func expectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// actualScore returns team A's actual-outcome term. Binary mode is 1.0 or
// 0.0. Margin-weighted mode is team A's smoothed share of the total points
// scored, strictly inside (0, 1) even for a shutout, so a blowout moves
// ratings more than a deuce game but a delta can never reach K.
func actualScore(m Match, cfg Config) float64 {
	if !cfg.UsePointDifferential {
		if m.AWon() {
			return 1.0
		}
		return 0.0
	}
	a := float64(m.ScoreA)
	b := float64(m.ScoreB)
	return (a + 0.5) / (a + b + 1)
}

// Compute replays matches in the given order and returns final ratings plus
// the full change log. The pass is strictly sequential: each match sees the
// ratings as mutated by every earlier match, so the input order is part of
// the contract. The first invalid match aborts the whole pass; skipping a
// match would silently redefine the meaning of the history.
func Compute(matches []Match, cfg Config) (*Result, error) {
	res := &Result{
		Final:   make(map[string]float64),
		Changes: make([]Change, 0, len(matches)*4),
		Deltas:  make(map[string]TeamDeltas, len(matches)),
	}

	current := func(player string) float64 {
		if r, ok := res.Final[player]; ok {
			return r
		}
		return cfg.InitialRating
	}

	for i, m := range matches {
		if err := Validate(m); err != nil {
			return nil, fmt.Errorf("match %s (position %d): %w", m.ID, i, err)
		}

		teamA := (current(m.TeamA[0]) + current(m.TeamA[1])) / 2
		teamB := (current(m.TeamB[0]) + current(m.TeamB[1])) / 2

		expectedA := expectedScore(teamA, teamB)
		expectedB := 1 - expectedA
		actualA := actualScore(m, cfg)

		deltas := TeamDeltas{
			TeamA: cfg.K * (actualA - expectedA),
			TeamB: cfg.K * ((1 - actualA) - expectedB),
		}
		res.Deltas[m.ID] = deltas

		for _, p := range m.TeamA {
			after := current(p) + deltas.TeamA
			res.Final[p] = after
			res.Changes = append(res.Changes, Change{Player: p, MatchID: m.ID, Date: m.Date, RatingAfter: after, Delta: deltas.TeamA})
		}
		for _, p := range m.TeamB {
			after := current(p) + deltas.TeamB
			res.Final[p] = after
			res.Changes = append(res.Changes, Change{Player: p, MatchID: m.ID, Date: m.Date, RatingAfter: after, Delta: deltas.TeamB})
		}
	}

	return res, nil
}
