package stats

// PlayerSummary is one leaderboard row: current rating plus the cached
// counters derived from the full settled history.
type PlayerSummary struct {
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Points       int     `json:"points"`
	WinRate      float64 `json:"win_rate"`
	AvgPointDiff float64 `json:"avg_point_diff"`
}

// PairStat is one (player, other-player) aggregate row, scoped to the matches
// where the relationship held. Role tells partner rows from opponent rows.
type PairStat struct {
	Player       string  `json:"player"`
	Other        string  `json:"other"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Points       int     `json:"points"`
	WinRate      float64 `json:"win_rate"`
	AvgPointDiff float64 `json:"avg_point_diff"`
}

// TimelineEntry is one rating change joined with the match context a chart or
// history view wants to show next to it.
type TimelineEntry struct {
	Ordinal     int     `json:"ordinal"`
	Player      string  `json:"player"`
	MatchID     string  `json:"match_id"`
	Date        string  `json:"date"`
	RatingAfter float64 `json:"rating_after"`
	Delta       float64 `json:"delta"`
	Partner     string  `json:"partner"`
	Opponent1   string  `json:"opponent_1"`
	Opponent2   string  `json:"opponent_2"`
	Won         bool    `json:"won"`
	OwnScore    int     `json:"own_score"`
	OtherScore  int     `json:"other_score"`
}

// Aggregates is the full derived output of one pass: everything the read
// surfaces serve, and nothing the raw match store owns.
type Aggregates struct {
	Players   []PlayerSummary
	Partners  []PairStat
	Opponents []PairStat
	Timeline  []TimelineEntry
}
