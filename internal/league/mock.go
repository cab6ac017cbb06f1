package league

import (
	"database/sql"
	"sync"

	"github.com/rvilhelmsen/beachrank/internal/rating"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetOrCreatePlayerFunc func(name string) (Player, error)
	ListPlayersFunc       func() ([]Player, error)
	IsKnownPlayerFunc     func(name string) bool
	CreateSessionFunc     func(date string) (Session, error)
	GetSessionFunc        func(sessionID string) (Session, error)
	ListSessionsFunc      func() ([]Session, error)
	PendingSessionFunc    func() (*Session, error)
	SettleSessionFunc     func(sessionID string) (int, error)
	DeleteSessionFunc     func(sessionID string) error
	AddMatchFunc          func(sessionID string, sub MatchSubmission) (Match, error)
	UpdateMatchFunc       func(matchID string, sub MatchSubmission) (Match, error)
	DeleteMatchFunc       func(matchID string) error
	SessionMatchesFunc    func(sessionID string) ([]Match, error)
	SettledMatchesFunc    func() ([]Match, error)
	ReplaceAllSettledFunc func(rows []MatchSubmission) (int, error)
	ApplyTeamDeltasFunc   func(tx *sql.Tx, deltas map[string]rating.TeamDeltas) error

	// Call records
	CreateSessionCalls []string
	SettleSessionCalls []string
	DeleteSessionCalls []string
	AddMatchCalls      []struct {
		SessionID string
		Sub       MatchSubmission
	}
	UpdateMatchCalls []struct {
		MatchID string
		Sub     MatchSubmission
	}
	DeleteMatchCalls       []string
	ReplaceAllSettledCalls [][]MatchSubmission
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetOrCreatePlayer(name string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetOrCreatePlayerFunc != nil {
		return m.GetOrCreatePlayerFunc(name)
	}
	return Player{ID: "mock-" + name, Name: name}, nil
}

func (m *MockStore) ListPlayers() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(name)
	}
	return false
}

func (m *MockStore) CreateSession(date string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateSessionCalls = append(m.CreateSessionCalls, date)
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(date)
	}
	return Session{ID: "mock-session", Date: date, Status: SessionPending}, nil
}

func (m *MockStore) GetSession(sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(sessionID)
	}
	return Session{ID: sessionID, Status: SessionPending}, nil
}

func (m *MockStore) ListSessions() ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc()
	}
	return nil, nil
}

func (m *MockStore) PendingSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PendingSessionFunc != nil {
		return m.PendingSessionFunc()
	}
	return nil, nil
}

func (m *MockStore) SettleSession(sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettleSessionCalls = append(m.SettleSessionCalls, sessionID)
	if m.SettleSessionFunc != nil {
		return m.SettleSessionFunc(sessionID)
	}
	return 0, nil
}

func (m *MockStore) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteSessionCalls = append(m.DeleteSessionCalls, sessionID)
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(sessionID)
	}
	return nil
}

func (m *MockStore) AddMatch(sessionID string, sub MatchSubmission) (Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddMatchCalls = append(m.AddMatchCalls, struct {
		SessionID string
		Sub       MatchSubmission
	}{sessionID, sub})
	if m.AddMatchFunc != nil {
		return m.AddMatchFunc(sessionID, sub)
	}
	return Match{ID: "mock-match", SessionID: sessionID}, nil
}

func (m *MockStore) UpdateMatch(matchID string, sub MatchSubmission) (Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateMatchCalls = append(m.UpdateMatchCalls, struct {
		MatchID string
		Sub     MatchSubmission
	}{matchID, sub})
	if m.UpdateMatchFunc != nil {
		return m.UpdateMatchFunc(matchID, sub)
	}
	return Match{ID: matchID}, nil
}

func (m *MockStore) DeleteMatch(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, matchID)
	if m.DeleteMatchFunc != nil {
		return m.DeleteMatchFunc(matchID)
	}
	return nil
}

func (m *MockStore) SessionMatches(sessionID string) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SessionMatchesFunc != nil {
		return m.SessionMatchesFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) SettledMatches() ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SettledMatchesFunc != nil {
		return m.SettledMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) ReplaceAllSettled(rows []MatchSubmission) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceAllSettledCalls = append(m.ReplaceAllSettledCalls, rows)
	if m.ReplaceAllSettledFunc != nil {
		return m.ReplaceAllSettledFunc(rows)
	}
	return len(rows), nil
}

func (m *MockStore) ApplyTeamDeltas(tx *sql.Tx, deltas map[string]rating.TeamDeltas) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ApplyTeamDeltasFunc != nil {
		return m.ApplyTeamDeltasFunc(tx, deltas)
	}
	return nil
}
