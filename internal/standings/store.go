package standings

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/rvilhelmsen/beachrank/internal/stats"
)

// ErrPlayerNotFound is returned when a player lookup matches nothing.
var ErrPlayerNotFound = errors.New("player not found")

// New creates a new standings Store.
func New(db *sql.DB) Store {
	return &store{db: db}
}

// ReplaceAll wipes and rewrites the four derived tables on the caller's
// transaction, so readers observe either the previous pass or this one,
// never a mixture.
func (s *store) ReplaceAll(tx *sql.Tx, agg *stats.Aggregates, playerIDs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"player_summaries", "rating_history", "partner_stats", "opponent_stats"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	id := func(name string) (string, error) {
		if pid, ok := playerIDs[name]; ok {
			return pid, nil
		}
		return "", fmt.Errorf("no player id for %q", name)
	}

	summaryStmt, err := tx.Prepare(`
		INSERT INTO player_summaries (player_id, player_name, rating, games, wins, points, win_rate, avg_point_diff)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer summaryStmt.Close()
	for _, p := range agg.Players {
		pid, err := id(p.Name)
		if err != nil {
			return err
		}
		if _, err := summaryStmt.Exec(pid, p.Name, p.Rating, p.Games, p.Wins, p.Points, p.WinRate, p.AvgPointDiff); err != nil {
			return fmt.Errorf("failed to insert summary for %s: %w", p.Name, err)
		}
	}

	historyStmt, err := tx.Prepare(`
		INSERT INTO rating_history (ordinal, player_id, player_name, match_id, date, rating_after, delta,
			partner_name, opponent1_name, opponent2_name, won, own_score, other_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer historyStmt.Close()
	for _, e := range agg.Timeline {
		pid, err := id(e.Player)
		if err != nil {
			return err
		}
		if _, err := historyStmt.Exec(e.Ordinal, pid, e.Player, e.MatchID, e.Date, e.RatingAfter, e.Delta,
			e.Partner, e.Opponent1, e.Opponent2, e.Won, e.OwnScore, e.OtherScore); err != nil {
			return fmt.Errorf("failed to insert rating history row %d: %w", e.Ordinal, err)
		}
	}

	if err := insertPairs(tx, "partner_stats", "partner_id", "partner_name", agg.Partners, playerIDs); err != nil {
		return err
	}
	if err := insertPairs(tx, "opponent_stats", "opponent_id", "opponent_name", agg.Opponents, playerIDs); err != nil {
		return err
	}

	log.Debug("Replaced derived tables",
		"players", len(agg.Players), "history", len(agg.Timeline),
		"partners", len(agg.Partners), "opponents", len(agg.Opponents))
	return nil
}

func insertPairs(tx *sql.Tx, table, otherIDCol, otherNameCol string, rows []stats.PairStat, playerIDs map[string]string) error {
	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (player_id, player_name, %s, %s, games, wins, points, win_rate, avg_point_diff)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, otherIDCol, otherNameCol))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		pid, ok := playerIDs[r.Player]
		if !ok {
			return fmt.Errorf("no player id for %q", r.Player)
		}
		oid, ok := playerIDs[r.Other]
		if !ok {
			return fmt.Errorf("no player id for %q", r.Other)
		}
		if _, err := stmt.Exec(pid, r.Player, oid, r.Other, r.Games, r.Wins, r.Points, r.WinRate, r.AvgPointDiff); err != nil {
			return fmt.Errorf("failed to insert %s row for %s/%s: %w", table, r.Player, r.Other, err)
		}
	}
	return nil
}

// leaderboardOrder is the league ranking law. It must match
// stats.SortLeaderboard exactly or the stored and in-memory rankings would
// disagree.
const leaderboardOrder = " ORDER BY points DESC, avg_point_diff DESC, win_rate DESC, rating DESC, player_name ASC"

func (s *store) Leaderboard() ([]stats.PlayerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadLeaderboard()
}

func (s *store) loadLeaderboard() ([]stats.PlayerSummary, error) {
	rows, err := s.db.Query("SELECT player_name, rating, games, wins, points, win_rate, avg_point_diff FROM player_summaries" + leaderboardOrder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.PlayerSummary
	for rows.Next() {
		var p stats.PlayerSummary
		if err := rows.Scan(&p.Name, &p.Rating, &p.Games, &p.Wins, &p.Points, &p.WinRate, &p.AvgPointDiff); err != nil {
			return nil, err
		}
		p.Losses = p.Games - p.Wins
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlayerDetail returns the overall row, rank and the partner/opponent
// breakdowns for a player. The lookup is case-insensitive and fuzzy, so
// "anna" matches "Anna Larsen".
func (s *store) PlayerDetail(name string) (*PlayerDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var detail PlayerDetail
	pattern := "%" + name + "%"
	err := s.db.QueryRow(`
		SELECT player_name, rating, games, wins, points, win_rate, avg_point_diff
		FROM player_summaries WHERE player_name LIKE ? COLLATE NOCASE LIMIT 1`, pattern).Scan(
		&detail.Overall.Name, &detail.Overall.Rating, &detail.Overall.Games, &detail.Overall.Wins,
		&detail.Overall.Points, &detail.Overall.WinRate, &detail.Overall.AvgPointDiff,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player matching %q: %w", name, ErrPlayerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	detail.Overall.Losses = detail.Overall.Games - detail.Overall.Wins

	// Rank is the position in the leaderboard order, name tie-break included.
	board, err := s.loadLeaderboard()
	if err != nil {
		return nil, fmt.Errorf("failed to compute rank: %w", err)
	}
	for i, p := range board {
		if p.Name == detail.Overall.Name {
			detail.Rank = i + 1
			break
		}
	}

	detail.Partners, err = s.queryPairs("partner_stats", "partner_name", detail.Overall.Name)
	if err != nil {
		return nil, err
	}
	detail.Opponents, err = s.queryPairs("opponent_stats", "opponent_name", detail.Overall.Name)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *store) queryPairs(table, otherNameCol, playerName string) ([]stats.PairStat, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT player_name, %s, games, wins, points, win_rate, avg_point_diff
		FROM %s WHERE player_name = ?
		ORDER BY points DESC, win_rate DESC, %s ASC`, otherNameCol, table, otherNameCol), playerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.PairStat
	for rows.Next() {
		var p stats.PairStat
		if err := rows.Scan(&p.Player, &p.Other, &p.Games, &p.Wins, &p.Points, &p.WinRate, &p.AvgPointDiff); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *store) Timeline() ([]stats.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryTimeline("SELECT ordinal, player_name, match_id, date, rating_after, delta, partner_name, opponent1_name, opponent2_name, won, own_score, other_score FROM rating_history ORDER BY ordinal ASC")
}

func (s *store) PlayerTimeline(name string) ([]stats.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryTimeline("SELECT ordinal, player_name, match_id, date, rating_after, delta, partner_name, opponent1_name, opponent2_name, won, own_score, other_score FROM rating_history WHERE player_name = ? COLLATE NOCASE ORDER BY ordinal ASC", name)
}

func (s *store) queryTimeline(query string, args ...any) ([]stats.TimelineEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.TimelineEntry
	for rows.Next() {
		var e stats.TimelineEntry
		if err := rows.Scan(&e.Ordinal, &e.Player, &e.MatchID, &e.Date, &e.RatingAfter, &e.Delta,
			&e.Partner, &e.Opponent1, &e.Opponent2, &e.Won, &e.OwnScore, &e.OtherScore); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *store) HasData() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM player_summaries").Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
