package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mauv0809/scorekeeper/internal/config"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

func NewServer(services Services, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, changes pubsub.Subscriber) *Server {
	server := &Server{
		Services:       services,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Changes:        changes,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	origins := s.Cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	handle := func(method, pattern string, h http.HandlerFunc) {
		s.Router.Method(method, pattern, Chain(h, paramsMiddleware))
	}

	s.Router.Handle("/metrics", s.MetricsHandler)
	handle(http.MethodGet, "/health", s.HealthCheckHandler())

	handle(http.MethodGet, "/sessions", s.ListSessionsHandler())
	handle(http.MethodPost, "/sessions", s.CreateSessionHandler())
	handle(http.MethodGet, "/sessions/{id}", s.GetSessionHandler())
	handle(http.MethodDelete, "/sessions/{id}", s.DeleteSessionHandler())

	handle(http.MethodGet, "/sessions/{id}/players", s.ListPlayersHandler())
	handle(http.MethodPost, "/sessions/{id}/players", s.CreatePlayerHandler())
	handle(http.MethodPost, "/sessions/{id}/players/defaults", s.CreateDefaultPlayersHandler())
	handle(http.MethodPatch, "/players/{id}", s.RenamePlayerHandler())
	handle(http.MethodDelete, "/players/{id}", s.DeletePlayerHandler())
	handle(http.MethodPost, "/players/{id}/toggle", s.TogglePlayerHandler())

	handle(http.MethodGet, "/sessions/{id}/rounds", s.ListRoundsHandler())
	handle(http.MethodPost, "/sessions/{id}/rounds", s.CreateRoundHandler())
	handle(http.MethodGet, "/sessions/{id}/rounds/latest", s.LatestRoundHandler())
	handle(http.MethodGet, "/rounds/{id}/entries", s.RoundEntriesHandler())
	handle(http.MethodPost, "/sessions/{id}/undo", s.UndoHandler())

	handle(http.MethodGet, "/sessions/{id}/totals", s.StandingsHandler())
	handle(http.MethodGet, "/sessions/{id}/players/{pid}/total", s.PlayerTotalHandler())
	handle(http.MethodGet, "/sessions/{id}/audit", s.AuditHandler())
	handle(http.MethodPost, "/sessions/{id}/standings/notify", s.NotifyStandingsHandler())

	// The websocket hijacks the connection, so it skips the logging wrapper.
	s.Router.Get("/ws", s.ChangesHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
