package league

import (
	"database/sql"

	"github.com/rvilhelmsen/beachrank/internal/rating"
)

// Store defines the interface for the raw league record. It owns matches,
// sessions and player identities; everything derived belongs to the
// standings store.
type Store interface {
	// Players.
	GetOrCreatePlayer(name string) (Player, error)
	ListPlayers() ([]Player, error)
	IsKnownPlayer(name string) bool

	// Sessions.
	CreateSession(date string) (Session, error)
	GetSession(sessionID string) (Session, error)
	ListSessions() ([]Session, error)
	PendingSession() (*Session, error)
	SettleSession(sessionID string) (int, error)
	DeleteSession(sessionID string) error

	// Pending match CRUD. Valid only while the owning session is pending.
	AddMatch(sessionID string, sub MatchSubmission) (Match, error)
	UpdateMatch(matchID string, sub MatchSubmission) (Match, error)
	DeleteMatch(matchID string) error
	SessionMatches(sessionID string) ([]Match, error)

	// Settled history.
	SettledMatches() ([]Match, error)
	ReplaceAllSettled(rows []MatchSubmission) (int, error)

	// ApplyTeamDeltas records the per-team rating deltas on settled matches.
	// It runs inside the recompute swap transaction supplied by the caller.
	ApplyTeamDeltas(tx *sql.Tx, deltas map[string]rating.TeamDeltas) error
}
