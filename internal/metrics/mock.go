package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu              sync.Mutex
	roundsCreated   int
	roundsRejected  int
	roundsUndone    int
	undoNoop        int
	missingTotals   int
	sessionsDeleted int
	playersDeleted  int
	txDurations     map[string][]float64
	notifSent       int
	notifFailed     int
	startupTime     float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		txDurations: make(map[string][]float64),
	}
}

func (m *Mock) IncRoundsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsCreated++
}

func (m *Mock) IncRoundsRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsRejected++
}

func (m *Mock) IncRoundsUndone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsUndone++
}

func (m *Mock) IncUndoNoop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoNoop++
}

func (m *Mock) IncMissingTotals() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missingTotals++
}

func (m *Mock) IncSessionsDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsDeleted++
}

func (m *Mock) IncPlayersDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersDeleted++
}

func (m *Mock) ObserveTxDuration(operation string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txDurations[operation] = append(m.txDurations[operation], duration)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RoundsCreated returns the number of times IncRoundsCreated was called.
func (m *Mock) RoundsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsCreated
}

// RoundsRejected returns the number of times IncRoundsRejected was called.
func (m *Mock) RoundsRejected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsRejected
}

// RoundsUndone returns the number of times IncRoundsUndone was called.
func (m *Mock) RoundsUndone() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsUndone
}

// UndoNoop returns the number of times IncUndoNoop was called.
func (m *Mock) UndoNoop() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.undoNoop
}

// MissingTotals returns the number of times IncMissingTotals was called.
func (m *Mock) MissingTotals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missingTotals
}

// SessionsDeleted returns the number of times IncSessionsDeleted was called.
func (m *Mock) SessionsDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionsDeleted
}

// PlayersDeleted returns the number of times IncPlayersDeleted was called.
func (m *Mock) PlayersDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersDeleted
}

// TxDurations returns the durations observed for operation.
func (m *Mock) TxDurations(operation string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.txDurations[operation]...)
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}
