package standings

import (
	"database/sql"

	"github.com/rvilhelmsen/beachrank/internal/stats"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	ReplaceAllFunc     func(tx *sql.Tx, agg *stats.Aggregates, playerIDs map[string]string) error
	LeaderboardFunc    func() ([]stats.PlayerSummary, error)
	PlayerDetailFunc   func(name string) (*PlayerDetail, error)
	TimelineFunc       func() ([]stats.TimelineEntry, error)
	PlayerTimelineFunc func(name string) ([]stats.TimelineEntry, error)
	HasDataFunc        func() (bool, error)

	ReplaceAllCalls     []struct{ PlayerIDs map[string]string }
	LeaderboardCalls    int
	PlayerDetailCalls   []struct{ Name string }
	TimelineCalls       int
	PlayerTimelineCalls []struct{ Name string }
	HasDataCalls        int
}

// NewMockStore creates a new mock standings store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) ReplaceAll(tx *sql.Tx, agg *stats.Aggregates, playerIDs map[string]string) error {
	m.ReplaceAllCalls = append(m.ReplaceAllCalls, struct{ PlayerIDs map[string]string }{playerIDs})
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(tx, agg, playerIDs)
	}
	return nil
}

func (m *MockStore) Leaderboard() ([]stats.PlayerSummary, error) {
	m.LeaderboardCalls++
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) PlayerDetail(name string) (*PlayerDetail, error) {
	m.PlayerDetailCalls = append(m.PlayerDetailCalls, struct{ Name string }{name})
	if m.PlayerDetailFunc != nil {
		return m.PlayerDetailFunc(name)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) Timeline() ([]stats.TimelineEntry, error) {
	m.TimelineCalls++
	if m.TimelineFunc != nil {
		return m.TimelineFunc()
	}
	return nil, nil
}

func (m *MockStore) PlayerTimeline(name string) ([]stats.TimelineEntry, error) {
	m.PlayerTimelineCalls = append(m.PlayerTimelineCalls, struct{ Name string }{name})
	if m.PlayerTimelineFunc != nil {
		return m.PlayerTimelineFunc(name)
	}
	return nil, nil
}

func (m *MockStore) HasData() (bool, error) {
	m.HasDataCalls++
	if m.HasDataFunc != nil {
		return m.HasDataFunc()
	}
	return false, nil
}
