package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RoundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_rounds_created_total",
			Help: "The total number of rounds committed.",
		}),
		RoundsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_rounds_rejected_total",
			Help: "The total number of round submissions rejected by validation.",
		}),
		RoundsUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_rounds_undone_total",
			Help: "The total number of rounds removed by undo.",
		}),
		UndoNoop: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_undo_noop_total",
			Help: "The total number of undo requests on sessions without rounds.",
		}),
		MissingTotals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_missing_totals_total",
			Help: "The total number of deltas skipped because the player's total row did not exist.",
		}),
		SessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_sessions_deleted_total",
			Help: "The total number of sessions deleted with their dependent records.",
		}),
		PlayersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_players_deleted_total",
			Help: "The total number of players deleted.",
		}),
		TxDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scorekeeper_tx_duration_seconds",
			Help:    "The duration of write transactions by operation.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_notifications_sent_total",
			Help: "The total number of standings notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorekeeper_notifications_failed_total",
			Help: "The total number of standings notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scorekeeper_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RoundsCreated,
		s.RoundsRejected,
		s.RoundsUndone,
		s.UndoNoop,
		s.MissingTotals,
		s.SessionsDeleted,
		s.PlayersDeleted,
		s.TxDuration,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRoundsCreated() {
	s.RoundsCreated.Inc()
}

func (s *Service) IncRoundsRejected() {
	s.RoundsRejected.Inc()
}

func (s *Service) IncRoundsUndone() {
	s.RoundsUndone.Inc()
}

func (s *Service) IncUndoNoop() {
	s.UndoNoop.Inc()
}

func (s *Service) IncMissingTotals() {
	s.MissingTotals.Inc()
}

func (s *Service) IncSessionsDeleted() {
	s.SessionsDeleted.Inc()
}

func (s *Service) IncPlayersDeleted() {
	s.PlayersDeleted.Inc()
}

func (s *Service) ObserveTxDuration(operation string, duration float64) {
	s.TxDuration.WithLabelValues(operation).Observe(duration)
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
