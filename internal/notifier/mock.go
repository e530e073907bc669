package notifier

import "sync"

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendStandingsFunc           func(update StandingsUpdate, dryRun bool) error
	FormatStandingsResponseFunc func(update StandingsUpdate) (any, error)

	// Call records
	SendStandingsCalls []struct {
		Update StandingsUpdate
		DryRun bool
	}
	LastStandingsResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = nil
	m.LastStandingsResponse = nil
}

func (m *Mock) SendStandings(update StandingsUpdate, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, struct {
		Update StandingsUpdate
		DryRun bool
	}{update, dryRun})
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(update, dryRun)
	}
	return nil
}

func (m *Mock) FormatStandingsResponse(update StandingsUpdate) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatStandingsResponseFunc != nil {
		resp, err := m.FormatStandingsResponseFunc(update)
		m.LastStandingsResponse = resp
		return resp, err
	}
	return "formatted_standings", nil
}

// Calls returns a copy of the recorded SendStandings updates.
func (m *Mock) Calls() []StandingsUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StandingsUpdate, 0, len(m.SendStandingsCalls))
	for _, c := range m.SendStandingsCalls {
		out = append(out, c.Update)
	}
	return out
}
