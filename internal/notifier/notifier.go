package notifier

import (
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/rvilhelmsen/beachrank/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For settled sessions and recompute outcomes
	SendSessionSettled(session *league.Session, board []stats.PlayerSummary, dryRun bool) error
	SendRecomputeFailed(reason string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(board []stats.PlayerSummary) (any, error)
	FormatPlayerStatsResponse(detail *standings.PlayerDetail, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
