package standings

import (
	"database/sql"
	"sync"

	"github.com/rvilhelmsen/beachrank/internal/stats"
)

// store reads and bulk-replaces the derived statistics tables.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerDetail is the full per-player read model: leaderboard position and
// overall counters plus the partner and opponent breakdowns.
type PlayerDetail struct {
	Rank      int                 `json:"rank"`
	Overall   stats.PlayerSummary `json:"overall"`
	Partners  []stats.PairStat    `json:"partners"`
	Opponents []stats.PairStat    `json:"opponents"`
}
