package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the services from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRoundsCreated()
	IncRoundsRejected()
	IncRoundsUndone()
	IncUndoNoop()
	IncMissingTotals()
	IncSessionsDeleted()
	IncPlayersDeleted()
	ObserveTxDuration(operation string, duration float64)
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}
