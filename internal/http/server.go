package http

import (
	"net/http"

	"github.com/rvilhelmsen/beachrank/internal/config"
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/notifier"
	"github.com/rvilhelmsen/beachrank/internal/pubsub"
	"github.com/rvilhelmsen/beachrank/internal/recompute"
	"github.com/rvilhelmsen/beachrank/internal/standings"
)

func NewServer(store league.Store, views standings.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, recomputer recompute.Orchestrator, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Views:          views,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Recomputer:     recomputer,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	slackVerify := slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/player-stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/timeline", Chain(s.TimelineHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/player-matches", Chain(s.PlayerMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/sessions", Chain(s.ListSessionsHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/create", Chain(s.CreateSessionHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/add-match", Chain(s.AddMatchHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/update-match", Chain(s.UpdateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/remove-match", Chain(s.RemoveMatchHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/settle", Chain(s.SettleSessionHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/delete", Chain(s.DeleteSessionHandler(), paramsMiddleware))
	s.Router.Handle("/import", Chain(s.ImportHandler(), paramsMiddleware))
	s.Router.Handle("/export", Chain(s.ExportHandler(), paramsMiddleware))
	s.Router.Handle("/recompute", Chain(s.RecomputeHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slackVerify))
	s.Router.Handle("/slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), paramsMiddleware, slackVerify))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
