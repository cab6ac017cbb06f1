package league

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rvilhelmsen/beachrank/internal/rating"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSessionSettled    = errors.New("session is settled")
	ErrSessionNotEmpty   = errors.New("session still has matches")
	ErrMatchSettled      = errors.New("match is settled and immutable")
	ErrInvalidSubmission = errors.New("invalid match submission")
)

// New creates a new Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx so player auto-vivification
// can run inside or outside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (s *store) GetOrCreatePlayer(name string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getOrCreatePlayer(s.db, name)
}

func getOrCreatePlayer(q execer, name string) (Player, error) {
	if name == "" {
		return Player{}, fmt.Errorf("%w: empty player name", ErrInvalidSubmission)
	}

	var p Player
	err := q.QueryRow("SELECT id, name, created_at FROM players WHERE name = ?", name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Player{}, fmt.Errorf("failed to look up player %q: %w", name, err)
	}

	p = Player{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UnixNano()}
	if _, err := q.Exec("INSERT INTO players (id, name, created_at) VALUES (?, ?, ?)", p.ID, p.Name, p.CreatedAt); err != nil {
		return Player{}, fmt.Errorf("failed to create player %q: %w", name, err)
	}
	log.Info("Discovered and added new player", "playerID", p.ID, "name", name)
	return p, nil
}

func (s *store) ListPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, created_at FROM players ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) IsKnownPlayer(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE name = ?)", name).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "name", name)
		return false
	}
	return exists
}

// CreateSession creates a pending session for the given ISO date. The human
// label is derived from the date; when sessions already exist for that date
// the label gets a " #N" suffix computed from the existing names, so deleted
// sessions may leave gaps but never collide.
func (s *store) CreateSession(date string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Session{}, fmt.Errorf("%w: invalid session date %q", ErrInvalidSubmission, date)
	}
	base := parsed.Format("1/2/2006")

	rows, err := s.db.Query("SELECT name FROM sessions WHERE date = ?", date)
	if err != nil {
		return Session{}, err
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Session{}, err
		}
		taken[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return Session{}, err
	}

	name := base
	for n := 2; ; n++ {
		if _, used := taken[name]; !used {
			break
		}
		name = fmt.Sprintf("%s #%d", base, n)
	}

	sess := Session{
		ID:        uuid.NewString(),
		Date:      date,
		Name:      name,
		Status:    SessionPending,
		CreatedAt: time.Now().UnixNano(),
	}
	_, err = s.db.Exec(
		"INSERT INTO sessions (id, date, name, status, created_at) VALUES (?, ?, ?, ?, ?)",
		sess.ID, sess.Date, sess.Name, sess.Status, sess.CreatedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	log.Info("Created session", "sessionID", sess.ID, "name", sess.Name)
	return sess, nil
}

const sessionQuery = `
	SELECT s.id, s.date, s.name, s.status, s.created_at,
	       (SELECT COUNT(*) FROM matches m WHERE m.session_id = s.id) AS match_count
	FROM sessions s`

func scanSession(scanner interface{ Scan(...any) error }) (Session, error) {
	var sess Session
	err := scanner.Scan(&sess.ID, &sess.Date, &sess.Name, &sess.Status, &sess.CreatedAt, &sess.MatchCount)
	return sess, err
}

func (s *store) GetSession(sessionID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSession(sessionID)
}

func (s *store) getSession(sessionID string) (Session, error) {
	sess, err := scanSession(s.db.QueryRow(sessionQuery+" WHERE s.id = ?", sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return sess, err
}

func (s *store) ListSessions() ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(sessionQuery + " ORDER BY s.date DESC, s.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// PendingSession returns the most recently created pending session, or nil
// when none is open. By convention at most one session is pending at a time,
// but that is not hard-enforced.
func (s *store) PendingSession() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := scanSession(s.db.QueryRow(sessionQuery + " WHERE s.status = 'pending' ORDER BY s.created_at DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// SettleSession promotes every match in the session to settled and locks the
// session, in one transaction. Settled matches are detached from the session
// and become part of the immutable history. Returns the number of matches
// promoted; the caller is expected to trigger a full recompute afterwards.
func (s *store) SettleSession(sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return 0, err
	}
	if sess.Status == SessionSettled {
		return 0, fmt.Errorf("session %s: %w", sess.Name, ErrSessionSettled)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec("UPDATE matches SET status = 'settled', session_id = NULL WHERE session_id = ?", sessionID)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to promote matches for session %s: %w", sess.Name, err)
	}
	promoted, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if _, err := tx.Exec("UPDATE sessions SET status = 'settled' WHERE id = ?", sessionID); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to settle session %s: %w", sess.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info("Settled session", "sessionID", sessionID, "name", sess.Name, "matches", promoted)
	return int(promoted), nil
}

// DeleteSession removes a pending session with no matches. A session that
// still has matches is refused outright: there is no silent cascade path to
// losing match data.
func (s *store) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return err
	}
	if sess.Status == SessionSettled {
		return fmt.Errorf("session %s: %w", sess.Name, ErrSessionSettled)
	}
	if sess.MatchCount > 0 {
		return fmt.Errorf("session %s has %d matches: %w", sess.Name, sess.MatchCount, ErrSessionNotEmpty)
	}

	_, err = s.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sess.Name, err)
	}
	log.Info("Deleted empty session", "sessionID", sessionID, "name", sess.Name)
	return nil
}

// validate converts a submission to the engine's match shape and runs the
// shared structural checks, so a malformed match is rejected here at the
// boundary and can never reach the rating engine.
func validate(sub MatchSubmission) error {
	if _, err := time.Parse("2006-01-02", sub.Date); err != nil {
		return fmt.Errorf("%w: invalid match date %q", ErrInvalidSubmission, sub.Date)
	}
	m := rating.Match{
		TeamA:  sub.Team1,
		TeamB:  sub.Team2,
		ScoreA: sub.Team1Score,
		ScoreB: sub.Team2Score,
	}
	if err := rating.Validate(m); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, err)
	}
	return nil
}

func (s *store) AddMatch(sessionID string, sub MatchSubmission) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return Match{}, err
	}
	if sess.Status != SessionPending {
		return Match{}, fmt.Errorf("session %s: %w", sess.Name, ErrSessionSettled)
	}
	if err := validate(sub); err != nil {
		return Match{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Match{}, err
	}

	match, err := insertMatch(tx, sessionID, MatchPending, sub, time.Now().UnixNano())
	if err != nil {
		tx.Rollback()
		return Match{}, err
	}

	if err := tx.Commit(); err != nil {
		return Match{}, err
	}
	log.Info("Added pending match", "matchID", match.ID, "sessionID", sessionID)
	return match, nil
}

// insertMatch auto-vivifies the four players and writes the match row, all on
// the caller's transaction.
func insertMatch(tx *sql.Tx, sessionID string, status MatchStatus, sub MatchSubmission, createdAt int64) (Match, error) {
	match := Match{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Date:       sub.Date,
		Team1Score: sub.Team1Score,
		Team2Score: sub.Team2Score,
		Status:     status,
		CreatedAt:  createdAt,
	}
	names := [4]string{sub.Team1[0], sub.Team1[1], sub.Team2[0], sub.Team2[1]}
	var refs [4]PlayerRef
	for i, name := range names {
		p, err := getOrCreatePlayer(tx, name)
		if err != nil {
			return Match{}, err
		}
		refs[i] = PlayerRef{ID: p.ID, Name: p.Name}
	}
	match.Team1 = [2]PlayerRef{refs[0], refs[1]}
	match.Team2 = [2]PlayerRef{refs[2], refs[3]}

	var sessionRef any
	if sessionID != "" {
		sessionRef = sessionID
	}
	_, err := tx.Exec(`
		INSERT INTO matches (id, session_id, date, team1_player1_id, team1_player2_id, team2_player1_id, team2_player2_id,
			team1_score, team2_score, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID, sessionRef, match.Date, refs[0].ID, refs[1].ID, refs[2].ID, refs[3].ID,
		match.Team1Score, match.Team2Score, match.Status, match.CreatedAt,
	)
	if err != nil {
		return Match{}, fmt.Errorf("failed to insert match: %w", err)
	}
	return match, nil
}

func (s *store) UpdateMatch(matchID string, sub MatchSubmission) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getMatch(matchID)
	if err != nil {
		return Match{}, err
	}
	if existing.Status != MatchPending {
		return Match{}, fmt.Errorf("match %s: %w", matchID, ErrMatchSettled)
	}
	if err := validate(sub); err != nil {
		return Match{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Match{}, err
	}

	names := [4]string{sub.Team1[0], sub.Team1[1], sub.Team2[0], sub.Team2[1]}
	var refs [4]PlayerRef
	for i, name := range names {
		p, err := getOrCreatePlayer(tx, name)
		if err != nil {
			tx.Rollback()
			return Match{}, err
		}
		refs[i] = PlayerRef{ID: p.ID, Name: p.Name}
	}

	_, err = tx.Exec(`
		UPDATE matches SET date = ?, team1_player1_id = ?, team1_player2_id = ?, team2_player1_id = ?, team2_player2_id = ?,
			team1_score = ?, team2_score = ?
		WHERE id = ?`,
		sub.Date, refs[0].ID, refs[1].ID, refs[2].ID, refs[3].ID, sub.Team1Score, sub.Team2Score, matchID,
	)
	if err != nil {
		tx.Rollback()
		return Match{}, fmt.Errorf("failed to update match %s: %w", matchID, err)
	}
	if err := tx.Commit(); err != nil {
		return Match{}, err
	}

	existing.Date = sub.Date
	existing.Team1 = [2]PlayerRef{refs[0], refs[1]}
	existing.Team2 = [2]PlayerRef{refs[2], refs[3]}
	existing.Team1Score = sub.Team1Score
	existing.Team2Score = sub.Team2Score
	log.Info("Updated pending match", "matchID", matchID)
	return existing, nil
}

func (s *store) DeleteMatch(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := s.getMatch(matchID)
	if err != nil {
		return err
	}
	if match.Status != MatchPending {
		return fmt.Errorf("match %s: %w", matchID, ErrMatchSettled)
	}

	_, err = s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	log.Info("Deleted pending match", "matchID", matchID)
	return nil
}

const matchQuery = `
	SELECT m.id, m.session_id, m.date,
	       p1.id, p1.name, p2.id, p2.name, p3.id, p3.name, p4.id, p4.name,
	       m.team1_score, m.team2_score, m.status, m.team1_delta, m.team2_delta, m.created_at
	FROM matches m
	JOIN players p1 ON p1.id = m.team1_player1_id
	JOIN players p2 ON p2.id = m.team1_player2_id
	JOIN players p3 ON p3.id = m.team2_player1_id
	JOIN players p4 ON p4.id = m.team2_player2_id`

func scanMatch(scanner interface{ Scan(...any) error }) (Match, error) {
	var m Match
	var sessionID sql.NullString
	err := scanner.Scan(
		&m.ID, &sessionID, &m.Date,
		&m.Team1[0].ID, &m.Team1[0].Name, &m.Team1[1].ID, &m.Team1[1].Name,
		&m.Team2[0].ID, &m.Team2[0].Name, &m.Team2[1].ID, &m.Team2[1].Name,
		&m.Team1Score, &m.Team2Score, &m.Status, &m.Team1Delta, &m.Team2Delta, &m.CreatedAt,
	)
	if err != nil {
		return Match{}, err
	}
	m.SessionID = sessionID.String
	return m, nil
}

func (s *store) getMatch(matchID string) (Match, error) {
	m, err := scanMatch(s.db.QueryRow(matchQuery+" WHERE m.id = ?", matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return m, err
}

func (s *store) SessionMatches(sessionID string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(matchQuery+" WHERE m.session_id = ? ORDER BY m.created_at ASC", sessionID)
}

// SettledMatches returns the full settled history in replay order: date, then
// insertion time, then id. Every consumer of the history reads it through
// this one query so ratings and aggregates can never disagree on order.
func (s *store) SettledMatches() ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(matchQuery + " WHERE m.status = 'settled' ORDER BY m.date ASC, m.created_at ASC, m.id ASC")
}

func (s *store) queryMatches(query string, args ...any) ([]Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ReplaceAllSettled wipes the settled history and re-inserts the given rows
// in order, auto-vivifying any new players. Pending sessions and their
// matches are untouched. This is the destructive half of a bulk import; the
// HTTP layer demands confirmation and a backup export before calling it.
func (s *store) ReplaceAllSettled(subs []MatchSubmission) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range subs {
		if err := validate(sub); err != nil {
			return 0, fmt.Errorf("import row %d: %w", i+1, err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec("DELETE FROM matches WHERE status = 'settled'"); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to clear settled matches: %w", err)
	}

	// created_at doubles as the insertion-order tie-break, so imported rows
	// get strictly increasing stamps in input order.
	base := time.Now().UnixNano()
	for i, sub := range subs {
		if _, err := insertMatch(tx, "", MatchSettled, sub, base+int64(i)); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("import row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info("Replaced settled match history", "count", len(subs))
	return len(subs), nil
}

// ApplyTeamDeltas stamps the recompute's per-team rating deltas onto settled
// match rows. It runs on the caller's transaction: the deltas land atomically
// with the derived-table swap or not at all.
func (s *store) ApplyTeamDeltas(tx *sql.Tx, deltas map[string]rating.TeamDeltas) error {
	stmt, err := tx.Prepare("UPDATE matches SET team1_delta = ?, team2_delta = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for matchID, d := range deltas {
		if _, err := stmt.Exec(d.TeamA, d.TeamB, matchID); err != nil {
			return fmt.Errorf("failed to record deltas for match %s: %w", matchID, err)
		}
	}
	return nil
}
