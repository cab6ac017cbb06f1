package standings

import (
	"database/sql"

	"github.com/rvilhelmsen/beachrank/internal/stats"
)

// Store is the read/replace interface over the derived statistics tables.
// The tables are materialized views: the only write path is ReplaceAll,
// invoked by the recompute orchestrator inside its swap transaction. Any
// other write is a bug.
type Store interface {
	// ReplaceAll wipes and rewrites every derived table on the caller's
	// transaction. playerIDs maps player name to stable player id.
	ReplaceAll(tx *sql.Tx, agg *stats.Aggregates, playerIDs map[string]string) error

	Leaderboard() ([]stats.PlayerSummary, error)
	PlayerDetail(name string) (*PlayerDetail, error)
	Timeline() ([]stats.TimelineEntry, error)
	PlayerTimeline(name string) ([]stats.TimelineEntry, error)
	HasData() (bool, error)
}
