package total

import (
	"database/sql"

	"github.com/mauv0809/scorekeeper/internal/schema"
)

// UnknownPlayerName is shown for totals whose player row no longer exists.
const UnknownPlayerName = "Unknown"

// store handles read-only standings queries.
type store struct {
	db *sql.DB
}

// PlayerTotal is a standings row.
type PlayerTotal struct {
	schema.Total
	PlayerName string `json:"playerName"`
	Active     bool   `json:"active"`
}

// Drift reports a player whose cached total does not match their entries.
type Drift struct {
	PlayerID int64 `json:"playerId"`
	Cached   int   `json:"cached"`
	Ledger   int   `json:"ledger"`
	HasTotal bool  `json:"hasTotal"`
}
