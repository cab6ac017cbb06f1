package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rvilhelmsen/beachrank/internal/importer"
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/pubsub"
	"github.com/rvilhelmsen/beachrank/internal/recompute"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		hasData, err := s.Views.HasData()
		if err != nil {
			http.Error(w, "Failed to check standings", http.StatusInternalServerError)
			log.Error("Health check failed to query standings", "error", err)
			return
		}
		respondJSON(w, map[string]any{"status": "ok", "has_data": hasData})
	}
}

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// storeErrorStatus maps the store's sentinel errors onto HTTP status codes.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, league.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrSessionSettled),
		errors.Is(err, league.ErrSessionNotEmpty),
		errors.Is(err, league.ErrMatchSettled),
		errors.Is(err, recompute.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Views.Leaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}
		respondJSON(w, board)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.ListPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		respondJSON(w, players)
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Query parameter 'name' is required", http.StatusBadRequest)
			return
		}

		detail, err := s.Views.PlayerDetail(name)
		if err != nil {
			if errors.Is(err, standings.ErrPlayerNotFound) {
				http.Error(w, fmt.Sprintf("No player matching %q", name), http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err, "name", name)
			return
		}
		respondJSON(w, detail)
	}
}

func (s *Server) TimelineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		timeline, err := timelineFor(s.Views, name)
		if err != nil {
			http.Error(w, "Failed to get timeline", http.StatusInternalServerError)
			log.Error("Failed to get timeline from store", "error", err, "name", name)
			return
		}
		respondJSON(w, timeline)
	}
}

func timelineFor(views standings.Store, name string) (any, error) {
	if name == "" {
		return views.Timeline()
	}
	return views.PlayerTimeline(name)
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.SettledMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}

		// Optionally narrow to matches a single player took part in.
		if name := r.URL.Query().Get("name"); name != "" {
			matches = filterByPlayer(matches, name)
		}
		// History reads back newest first.
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
		respondJSON(w, matches)
	}
}

// PlayerMatchesHandler serves one player's match history: partner, opponents,
// result, score and rating movement per match, newest first.
func (s *Server) PlayerMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Missing required query parameter: name", http.StatusBadRequest)
			return
		}
		timeline, err := s.Views.PlayerTimeline(name)
		if err != nil {
			http.Error(w, "Failed to get match history", http.StatusInternalServerError)
			log.Error("Failed to get player match history", "error", err, "name", name)
			return
		}
		for i, j := 0, len(timeline)-1; i < j; i, j = i+1, j-1 {
			timeline[i], timeline[j] = timeline[j], timeline[i]
		}
		respondJSON(w, timeline)
	}
}

func filterByPlayer(matches []league.Match, name string) []league.Match {
	out := make([]league.Match, 0, len(matches))
	for _, m := range matches {
		for _, ref := range [...]league.PlayerRef{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]} {
			if strings.EqualFold(ref.Name, name) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Store.ListSessions()
		if err != nil {
			http.Error(w, "Failed to get sessions", http.StatusInternalServerError)
			log.Error("Failed to get sessions from store", "error", err)
			return
		}
		respondJSON(w, sessions)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			http.Error(w, fmt.Sprintf("Invalid date %q, want YYYY-MM-DD", date), http.StatusBadRequest)
			return
		}

		session, err := s.Store.CreateSession(date)
		if err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			log.Error("Failed to create session", "error", err, "date", date)
			return
		}
		log.Info("Created session", "sessionID", session.ID, "name", session.Name)
		respondJSON(w, session)
	}
}

// decodeSubmission reads a match submission from the request body.
func decodeSubmission(r *http.Request) (league.MatchSubmission, error) {
	var sub league.MatchSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		return sub, fmt.Errorf("invalid JSON body: %w", err)
	}
	return sub, nil
}

func (s *Server) AddMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := decodeSubmission(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			// Fall back to the open session so match entry doesn't need to
			// carry ids around.
			pending, err := s.Store.PendingSession()
			if err != nil {
				http.Error(w, "Failed to look up pending session", http.StatusInternalServerError)
				log.Error("Failed to look up pending session", "error", err)
				return
			}
			if pending == nil {
				http.Error(w, "No pending session. Create one first.", http.StatusNotFound)
				return
			}
			sessionID = pending.ID
		}

		match, err := s.Store.AddMatch(sessionID, sub)
		if err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			log.Error("Failed to add match", "error", err, "sessionID", sessionID)
			return
		}
		log.Info("Added match", "matchID", match.ID, "sessionID", sessionID)
		respondJSON(w, match)
	}
}

func (s *Server) UpdateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "Query parameter 'matchID' is required", http.StatusBadRequest)
			return
		}
		sub, err := decodeSubmission(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		match, err := s.Store.UpdateMatch(matchID, sub)
		if err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			log.Error("Failed to update match", "error", err, "matchID", matchID)
			return
		}
		log.Info("Updated match", "matchID", matchID)
		respondJSON(w, match)
	}
}

func (s *Server) RemoveMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "Query parameter 'matchID' is required", http.StatusBadRequest)
			return
		}

		if err := s.Store.DeleteMatch(matchID); err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			log.Error("Failed to remove match", "error", err, "matchID", matchID)
			return
		}
		log.Info("Removed match", "matchID", matchID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match removed.")
	}
}

func (s *Server) SettleSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "Query parameter 'sessionID' is required", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		session, err := s.Store.GetSession(sessionID)
		if err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			return
		}

		count, err := s.Store.SettleSession(sessionID)
		if err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			log.Error("Failed to settle session", "error", err, "sessionID", sessionID)
			return
		}
		s.Metrics.IncMatchesSettled(count)
		log.Info("Settled session", "sessionID", sessionID, "name", session.Name, "matches", count)

		if err := s.pubsub.SendMessage(pubsub.EventSessionSettled, pubsub.SessionSettledEvent{
			SessionID:   session.ID,
			SessionName: session.Name,
			MatchCount:  count,
		}); err != nil {
			log.Error("Failed to publish session settled event", "error", err)
		}

		result, err := s.Recomputer.RecomputeAll(r.Context())
		if err != nil {
			// The session is already settled; the standings just have not
			// caught up yet.
			http.Error(w, fmt.Sprintf("Session settled, but standings refresh failed: %v", err), storeErrorStatus(err))
			log.Error("Recompute after settle failed", "error", err, "sessionID", sessionID)
			if nerr := s.Notifier.SendRecomputeFailed(err.Error(), isDryRun); nerr != nil {
				log.Error("Failed to send recompute failure notification", "error", nerr)
			}
			return
		}

		board, err := s.Views.Leaderboard()
		if err != nil {
			log.Error("Failed to load leaderboard for notification", "error", err)
		} else if err := s.Notifier.SendSessionSettled(&session, board, isDryRun); err != nil {
			log.Error("Failed to send session settled notification", "error", err)
		}

		respondJSON(w, map[string]any{
			"session":         session.Name,
			"matches_settled": count,
			"players":         result.PlayerCount,
		})
	}
}

func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "Query parameter 'sessionID' is required", http.StatusBadRequest)
			return
		}

		if err := s.Store.DeleteSession(sessionID); err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			log.Error("Failed to delete session", "error", err, "sessionID", sessionID)
			return
		}
		log.Info("Deleted session", "sessionID", sessionID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Session deleted.")
	}
}

func (s *Server) ImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") != "true" {
			http.Error(w, "Import replaces the entire settled history. Pass confirm=true to proceed.", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		subs, err := importer.Parse(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			log.Error("Import parse failed", "error", err)
			return
		}

		// Snapshot the current history before it is replaced.
		backupPath, err := s.writeBackup()
		if err != nil {
			http.Error(w, "Failed to back up existing history", http.StatusInternalServerError)
			log.Error("Import backup failed", "error", err)
			return
		}

		count, err := s.Store.ReplaceAllSettled(subs)
		if err != nil {
			http.Error(w, err.Error(), storeErrorStatus(err))
			log.Error("Import failed", "error", err)
			return
		}
		s.Metrics.IncImportsRun()
		log.Info("Imported match history", "matches", count, "backup", backupPath)

		if err := s.pubsub.SendMessage(pubsub.EventImportCompleted, pubsub.ImportCompletedEvent{MatchCount: count}); err != nil {
			log.Error("Failed to publish import event", "error", err)
		}

		result, err := s.Recomputer.RecomputeAll(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("History imported, but standings refresh failed: %v", err), storeErrorStatus(err))
			log.Error("Recompute after import failed", "error", err)
			if nerr := s.Notifier.SendRecomputeFailed(err.Error(), isDryRunFromContext(r)); nerr != nil {
				log.Error("Failed to send recompute failure notification", "error", nerr)
			}
			return
		}

		respondJSON(w, map[string]any{
			"matches_imported": count,
			"players":          result.PlayerCount,
			"backup":           backupPath,
		})
	}
}

// writeBackup exports the current settled history to a timestamped workbook
// in the temp dir and returns its path.
func (s *Server) writeBackup() (string, error) {
	settled, err := s.Store.SettledMatches()
	if err != nil {
		return "", err
	}
	data, err := importer.Export(settled)
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("beachrank-backup-%s.xlsx", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Server) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settled, err := s.Store.SettledMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches for export", "error", err)
			return
		}
		data, err := importer.Export(settled)
		if err != nil {
			http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
			log.Error("Export failed", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="beachrank-history.xlsx"`)
		if _, err := w.Write(data); err != nil {
			log.Error("Failed to write export response", "error", err)
		}
	}
}

func (s *Server) RecomputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.Recomputer.RecomputeAll(r.Context())
		if err != nil {
			if errors.Is(err, recompute.ErrBusy) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, fmt.Sprintf("Recompute failed: %v", err), http.StatusInternalServerError)
			if nerr := s.Notifier.SendRecomputeFailed(err.Error(), isDryRunFromContext(r)); nerr != nil {
				log.Error("Failed to send recompute failure notification", "error", nerr)
			}
			return
		}
		respondJSON(w, result)
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Views.Leaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(board)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := r.FormValue("text")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", playerName)

		detail, err := s.Views.PlayerDetail(playerName)
		var msg any
		if err != nil {
			log.Warn("Could not find player stats", "player", playerName, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName)
		} else {
			msg, err = s.Notifier.FormatPlayerStatsResponse(detail, playerName)
		}

		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
