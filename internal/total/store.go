package total

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/schema"
)

// New creates a new TotalService.
func New(db *sql.DB) TotalService {
	return &store{
		db: db,
	}
}

// GetTotalsForSession breaks ties by insertion order of the totals.
func (s *store) GetTotalsForSession(ctx context.Context, sessionID int64) ([]PlayerTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.session_id, t.player_id, t.total, t.updated_at,
			COALESCE(p.name, ?), COALESCE(p.active, 0)
		FROM totals t
		LEFT JOIN players p ON p.id = t.player_id
		WHERE t.session_id = ?
		ORDER BY t.total DESC, t.rowid ASC`,
		UnknownPlayerName, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	standings := []PlayerTotal{}
	for rows.Next() {
		var pt PlayerTotal
		var updatedAt int64
		if err := rows.Scan(&pt.ID, &pt.SessionID, &pt.PlayerID, &pt.Total.Total, &updatedAt, &pt.PlayerName, &pt.Active); err != nil {
			return nil, err
		}
		pt.UpdatedAt = time.UnixMilli(updatedAt)
		standings = append(standings, pt)
	}
	return standings, rows.Err()
}

func (s *store) GetPlayerTotal(ctx context.Context, sessionID, playerID int64) (*schema.Total, error) {
	var t schema.Total
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, player_id, total, updated_at FROM totals WHERE id = ?`,
		schema.TotalKey(sessionID, playerID),
	).Scan(&t.ID, &t.SessionID, &t.PlayerID, &t.Total, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get total: %w", err)
	}
	t.UpdatedAt = time.UnixMilli(updatedAt)
	return &t, nil
}

// Audit covers both directions: totals that disagree with their entries, and
// entries whose player has no total row at all.
func (s *store) Audit(ctx context.Context, sessionID int64) ([]Drift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.player_id, t.total, COALESCE(SUM(e.delta), 0), 1
		FROM totals t
		LEFT JOIN entries e ON e.session_id = t.session_id AND e.player_id = t.player_id
		WHERE t.session_id = ?
		GROUP BY t.id
		HAVING t.total != COALESCE(SUM(e.delta), 0)
		UNION ALL
		SELECT e.player_id, 0, SUM(e.delta), 0
		FROM entries e
		WHERE e.session_id = ?
			AND NOT EXISTS (
				SELECT 1 FROM totals t WHERE t.session_id = e.session_id AND t.player_id = e.player_id
			)
		GROUP BY e.player_id
		ORDER BY 1`,
		sessionID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to audit totals: %w", err)
	}
	defer rows.Close()

	drifts := []Drift{}
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.PlayerID, &d.Cached, &d.Ledger, &d.HasTotal); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(drifts) > 0 {
		log.Warn("Totals drifted from entries", "sessionID", sessionID, "players", len(drifts))
	}
	return drifts, nil
}
