// Package stats builds the derived statistics from a settled match history
// and the rating engine's change log. Like the rating engine it is pure: the
// same inputs always yield the same rows, so a recompute can overwrite the
// derived tables without ever diffing them.
package stats

import (
	"fmt"
	"sort"

	"github.com/rvilhelmsen/beachrank/internal/rating"
)

type playerAcc struct {
	games     int
	wins      int
	pointDiff int
}

type pairAcc struct {
	games     int
	wins      int
	pointDiff int
}

type pairKey struct {
	player string
	other  string
}

// Compute walks the same match list the rating pass consumed and produces
// every derived row. Counters are accumulated as integers; win rate and
// average point differential are derived exactly once at the end, so no
// rounding compounds across the pass.
func Compute(matches []rating.Match, res *rating.Result, cfg rating.Config) (*Aggregates, error) {
	players := make(map[string]*playerAcc)
	partners := make(map[pairKey]*pairAcc)
	opponents := make(map[pairKey]*pairAcc)

	acc := func(m map[string]*playerAcc, name string) *playerAcc {
		if a, ok := m[name]; ok {
			return a
		}
		a := &playerAcc{}
		m[name] = a
		return a
	}
	pair := func(m map[pairKey]*pairAcc, player, other string) *pairAcc {
		k := pairKey{player, other}
		if a, ok := m[k]; ok {
			return a
		}
		a := &pairAcc{}
		m[k] = a
		return a
	}

	matchByID := make(map[string]rating.Match, len(matches))
	for _, m := range matches {
		if err := rating.Validate(m); err != nil {
			return nil, fmt.Errorf("match %s: %w", m.ID, err)
		}
		matchByID[m.ID] = m

		teams := [2][2]string{m.TeamA, m.TeamB}
		scores := [2]int{m.ScoreA, m.ScoreB}
		for ti, team := range teams {
			other := teams[1-ti]
			diff := scores[ti] - scores[1-ti]
			won := diff > 0
			for pi, name := range team {
				a := acc(players, name)
				a.games++
				a.pointDiff += diff
				if won {
					a.wins++
				}

				partner := team[1-pi]
				pa := pair(partners, name, partner)
				pa.games++
				pa.pointDiff += diff
				if won {
					pa.wins++
				}

				for _, opp := range other {
					oa := pair(opponents, name, opp)
					oa.games++
					oa.pointDiff += diff
					if won {
						oa.wins++
					}
				}
			}
		}
	}

	out := &Aggregates{}
	for name, a := range players {
		losses := a.games - a.wins
		out.Players = append(out.Players, PlayerSummary{
			Name:         name,
			Rating:       finalRating(res, cfg, name),
			Games:        a.games,
			Wins:         a.wins,
			Losses:       losses,
			Points:       a.wins*cfg.WinPoints + losses*cfg.LossPoints,
			WinRate:      ratio(a.wins, a.games),
			AvgPointDiff: avg(a.pointDiff, a.games),
		})
	}
	out.Partners = pairRows(partners, cfg)
	out.Opponents = pairRows(opponents, cfg)

	for i, c := range res.Changes {
		m, ok := matchByID[c.MatchID]
		if !ok {
			return nil, fmt.Errorf("change log references unknown match %s", c.MatchID)
		}
		entry := TimelineEntry{
			Ordinal:     i,
			Player:      c.Player,
			MatchID:     c.MatchID,
			Date:        c.Date,
			RatingAfter: c.RatingAfter,
			Delta:       c.Delta,
		}
		if c.Player == m.TeamA[0] || c.Player == m.TeamA[1] {
			entry.Partner = m.TeamA[0]
			if c.Player == m.TeamA[0] {
				entry.Partner = m.TeamA[1]
			}
			entry.Opponent1, entry.Opponent2 = m.TeamB[0], m.TeamB[1]
			entry.Won = m.AWon()
			entry.OwnScore, entry.OtherScore = m.ScoreA, m.ScoreB
		} else {
			entry.Partner = m.TeamB[0]
			if c.Player == m.TeamB[0] {
				entry.Partner = m.TeamB[1]
			}
			entry.Opponent1, entry.Opponent2 = m.TeamA[0], m.TeamA[1]
			entry.Won = !m.AWon()
			entry.OwnScore, entry.OtherScore = m.ScoreB, m.ScoreA
		}
		out.Timeline = append(out.Timeline, entry)
	}

	SortLeaderboard(out.Players)
	sortPairs(out.Partners)
	sortPairs(out.Opponents)
	return out, nil
}

// finalRating returns the player's rating after the full pass, or the initial
// rating for a player that somehow has no change entries.
func finalRating(res *rating.Result, cfg rating.Config, name string) float64 {
	if r, ok := res.Final[name]; ok {
		return r
	}
	return cfg.InitialRating
}

func pairRows(m map[pairKey]*pairAcc, cfg rating.Config) []PairStat {
	rows := make([]PairStat, 0, len(m))
	for k, a := range m {
		losses := a.games - a.wins
		rows = append(rows, PairStat{
			Player:       k.player,
			Other:        k.other,
			Games:        a.games,
			Wins:         a.wins,
			Points:       a.wins*cfg.WinPoints + losses*cfg.LossPoints,
			WinRate:      ratio(a.wins, a.games),
			AvgPointDiff: avg(a.pointDiff, a.games),
		})
	}
	return rows
}

// SortLeaderboard orders summaries by the league's ranking law: points, then
// average point differential, then win rate, then rating, all descending.
// Name ascending is the final tie-break so fully equal players still have a
// defined total order.
func SortLeaderboard(rows []PlayerSummary) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.AvgPointDiff != b.AvgPointDiff {
			return a.AvgPointDiff > b.AvgPointDiff
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Name < b.Name
	})
}

func sortPairs(rows []PairStat) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.Other < b.Other
	})
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func avg(sum, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(sum) / float64(den)
}
