package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventSessionSettled     EventType = "session-settled"
	EventRecomputeCompleted EventType = "recompute-completed"
	EventImportCompleted    EventType = "import-completed"
)

// SessionSettledEvent is published when a session is locked in.
type SessionSettledEvent struct {
	SessionID   string `msgpack:"session_id"`
	SessionName string `msgpack:"session_name"`
	MatchCount  int    `msgpack:"match_count"`
}

// RecomputeCompletedEvent is published after a successful full recompute.
type RecomputeCompletedEvent struct {
	PlayerCount int     `msgpack:"player_count"`
	MatchCount  int     `msgpack:"match_count"`
	DurationSec float64 `msgpack:"duration_sec"`
}

// ImportCompletedEvent is published after a spreadsheet import replaces the
// settled history.
type ImportCompletedEvent struct {
	MatchCount int `msgpack:"match_count"`
}
