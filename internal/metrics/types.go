package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	RoundsCreated      prometheus.Counter
	RoundsRejected     prometheus.Counter
	RoundsUndone       prometheus.Counter
	UndoNoop           prometheus.Counter
	MissingTotals      prometheus.Counter
	SessionsDeleted    prometheus.Counter
	PlayersDeleted     prometheus.Counter
	TxDuration         *prometheus.HistogramVec
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
