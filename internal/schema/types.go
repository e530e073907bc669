package schema

import "time"

// Session is one game or tracking context. It owns its players, rounds,
// entries and totals.
type Session struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Player belongs to exactly one session. Inactive players are skipped when
// new rounds are recorded but keep their place in the standings.
type Player struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"sessionId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// Round is one recorded scoring event. RoundNo is 1-based and gapless per session.
type Round struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"sessionId"`
	RoundNo   int       `json:"roundNo"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry is a single player's delta within a round.
type Entry struct {
	ID        string `json:"id"`
	SessionID int64  `json:"sessionId"`
	RoundID   int64  `json:"roundId"`
	PlayerID  int64  `json:"playerId"`
	Delta     int    `json:"delta"`
}

// Total caches the running sum of a player's entry deltas within a session.
type Total struct {
	ID        string    `json:"id"`
	SessionID int64     `json:"sessionId"`
	PlayerID  int64     `json:"playerId"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Delta is the score change submitted for one player when recording a round.
type Delta struct {
	PlayerID int64 `json:"playerId" msgpack:"player_id"`
	Delta    int   `json:"delta" msgpack:"delta"`
}
