package league

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the raw league record: players,
// sessions and matches. Derived statistics live in the standings store and
// are never written from here.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionSettled SessionStatus = "settled"
)

// MatchStatus is the settlement state of a match.
type MatchStatus string

const (
	MatchPending MatchStatus = "pending"
	MatchSettled MatchStatus = "settled"
)

// Player is a league member. Players are created implicitly the first time a
// match names them and are never deleted.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Session groups the pending matches entered together on one date. Locking
// it in promotes its matches to settled as a unit.
type Session struct {
	ID         string        `json:"id"`
	Date       string        `json:"date"` // ISO yyyy-mm-dd
	Name       string        `json:"name"` // human label, e.g. "11/7/2025 #2"
	Status     SessionStatus `json:"status"`
	MatchCount int           `json:"match_count"`
	CreatedAt  int64         `json:"created_at"`
}

// PlayerRef is a resolved player slot on a match row.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Match is one recorded game. While pending it belongs to a session and may
// be edited or deleted; once settled it is immutable and carries the per-team
// rating deltas written by the last recompute.
type Match struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"session_id,omitempty"`
	Date       string       `json:"date"` // ISO yyyy-mm-dd
	Team1      [2]PlayerRef `json:"team1"`
	Team2      [2]PlayerRef `json:"team2"`
	Team1Score int          `json:"team1_score"`
	Team2Score int          `json:"team2_score"`
	Status     MatchStatus  `json:"status"`
	Team1Delta float64      `json:"team1_delta"`
	Team2Delta float64      `json:"team2_delta"`
	CreatedAt  int64        `json:"created_at"`
}

// MatchSubmission is the caller-facing shape for adding or editing a match:
// player names (auto-vivified) rather than ids.
type MatchSubmission struct {
	Date       string    `json:"date"` // ISO yyyy-mm-dd
	Team1      [2]string `json:"team1"`
	Team2      [2]string `json:"team2"`
	Team1Score int       `json:"team1_score"`
	Team2Score int       `json:"team2_score"`
}
