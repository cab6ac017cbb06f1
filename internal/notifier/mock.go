package notifier

import (
	"sync"

	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/rvilhelmsen/beachrank/internal/stats"
	"github.com/slack-go/slack"
)

// MockNotifier is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	SendSessionSettledFunc  func(session *league.Session, board []stats.PlayerSummary, dryRun bool) error
	SendRecomputeFailedFunc func(reason string, dryRun bool) error

	FormatLeaderboardResponseFunc    func(board []stats.PlayerSummary) (any, error)
	FormatPlayerStatsResponseFunc    func(detail *standings.PlayerDetail, query string) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)

	SessionSettledCalls  []SessionSettledCall
	RecomputeFailedCalls []string
}

// SessionSettledCall holds the arguments for a call to SendSessionSettled.
type SessionSettledCall struct {
	Session *league.Session
	Board   []stats.PlayerSummary
	DryRun  bool
}

// NewMock creates a new mock Notifier.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendSessionSettled(session *league.Session, board []stats.PlayerSummary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionSettledCalls = append(m.SessionSettledCalls, SessionSettledCall{Session: session, Board: board, DryRun: dryRun})
	if m.SendSessionSettledFunc != nil {
		return m.SendSessionSettledFunc(session, board, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendRecomputeFailed(reason string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecomputeFailedCalls = append(m.RecomputeFailedCalls, reason)
	if m.SendRecomputeFailedFunc != nil {
		return m.SendRecomputeFailedFunc(reason, dryRun)
	}
	return nil
}

func (m *MockNotifier) FormatLeaderboardResponse(board []stats.PlayerSummary) (any, error) {
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(board)
	}
	return slack.Message{}, nil
}

func (m *MockNotifier) FormatPlayerStatsResponse(detail *standings.PlayerDetail, query string) (any, error) {
	if m.FormatPlayerStatsResponseFunc != nil {
		return m.FormatPlayerStatsResponseFunc(detail, query)
	}
	return slack.Message{}, nil
}

func (m *MockNotifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query)
	}
	return slack.Message{}, nil
}
