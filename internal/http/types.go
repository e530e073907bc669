package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/scorekeeper/internal/config"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/player"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/round"
	"github.com/mauv0809/scorekeeper/internal/schema"
	"github.com/mauv0809/scorekeeper/internal/session"
	"github.com/mauv0809/scorekeeper/internal/total"
	"github.com/mauv0809/scorekeeper/internal/undo"
)

// Services groups the score services the API is built on.
type Services struct {
	Sessions session.SessionService
	Players  player.PlayerService
	Rounds   round.RoundService
	Undo     undo.UndoService
	Totals   total.TotalService
}

type Server struct {
	Services
	MetricsHandler http.Handler
	Cfg            config.Config
	// Notifier is nil when no notification channel is configured.
	Notifier notifier.Notifier
	Changes  pubsub.Subscriber
	Router   chi.Router
}

type nameRequest struct {
	Name string `json:"name"`
}

type defaultPlayersRequest struct {
	Count int `json:"count"`
}

type createRoundRequest struct {
	Deltas []schema.Delta `json:"deltas"`
	Note   *string        `json:"note"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

type createRoundResponse struct {
	ID      int64 `json:"id"`
	ZeroSum bool  `json:"zeroSum"`
}

type undoResponse struct {
	Undone bool `json:"undone"`
}

type errorResponse struct {
	Error string `json:"error"`
}
