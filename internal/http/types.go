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

type Server struct {
	Store          league.Store
	Views          standings.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Recomputer     recompute.Orchestrator
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
