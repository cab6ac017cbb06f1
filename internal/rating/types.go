package rating

// Config holds the tunables of the rating model.
type Config struct {
	// K scales how much a single match can move a rating.
	K float64
	// InitialRating is assigned to a player on their first match.
	InitialRating float64
	// UsePointDifferential switches the actual-score term from binary
	// win/loss to margin-weighted. It affects ratings only; points, win rate
	// and point differentials always use the recorded scores.
	UsePointDifferential bool
	// WinPoints and LossPoints feed the points leaderboard: a loss still
	// scores, rewarding participation.
	WinPoints  int
	LossPoints int
}

// DefaultConfig returns the configuration the league has always played with.
func DefaultConfig() Config {
	return Config{
		K:                    40,
		InitialRating:        1200,
		UsePointDifferential: false,
		WinPoints:            3,
		LossPoints:           1,
	}
}

// Match is the minimal settled-match shape the engine consumes. The slice the
// engine receives must already be in replay order; the engine never reorders.
type Match struct {
	ID     string
	Date   string
	TeamA  [2]string
	TeamB  [2]string
	ScoreA int
	ScoreB int
}

// AWon reports whether team A took the match. Only valid for a match that
// passed Validate (ties are invalid).
func (m Match) AWon() bool { return m.ScoreA > m.ScoreB }

// Players returns the four slot names in fixed order.
func (m Match) Players() [4]string {
	return [4]string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]}
}

// Change records one player's rating movement for one match.
type Change struct {
	Player      string
	MatchID     string
	Date        string
	RatingAfter float64
	Delta       float64
}

// TeamDeltas holds the per-team rating delta of a single match. Both players
// on a team receive the identical delta.
type TeamDeltas struct {
	TeamA float64
	TeamB float64
}

// Result is the output of a full sequential pass over the settled history.
type Result struct {
	// Final maps player name to rating after the last match.
	Final map[string]float64
	// Changes is the full change log, two teams' worth of entries per match,
	// in replay order.
	Changes []Change
	// Deltas maps match ID to the per-team deltas applied for it.
	Deltas map[string]TeamDeltas
}
