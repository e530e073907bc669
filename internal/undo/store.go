package undo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/schema"
)

// New creates a new UndoService.
func New(db *sql.DB, pubsub pubsub.PubSubClient, metrics metrics.Metrics) UndoService {
	return &store{
		db:      db,
		pubsub:  pubsub,
		metrics: metrics,
	}
}

// UndoLastRound only ever removes the highest-numbered round, which keeps
// round numbers gapless. There is no redo and no deeper history.
func (s *store) UndoLastRound(ctx context.Context, sessionID int64) (bool, error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var roundID int64
	var roundNo int
	err = tx.QueryRowContext(ctx,
		`SELECT id, round_no FROM rounds WHERE session_id = ? ORDER BY round_no DESC LIMIT 1`,
		sessionID,
	).Scan(&roundID, &roundNo)
	if err == sql.ErrNoRows {
		s.metrics.IncUndoNoop()
		log.Info("Nothing to undo", "sessionID", sessionID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find latest round: %w", err)
	}

	entries, err := loadEntries(ctx, tx, roundID)
	if err != nil {
		return false, err
	}

	now := time.Now().UnixMilli()
	for _, e := range entries {
		res, err := tx.ExecContext(ctx,
			`UPDATE totals SET total = total - ?, updated_at = ? WHERE id = ?`,
			e.Delta, now, schema.TotalKey(sessionID, e.PlayerID),
		)
		if err != nil {
			return false, fmt.Errorf("failed to revert total for player %d: %w", e.PlayerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to check total for player %d: %w", e.PlayerID, err)
		}
		if n == 0 {
			s.metrics.IncMissingTotals()
			log.Warn("No total row for player, delta not reverted", "sessionID", sessionID, "playerID", e.PlayerID, "delta", e.Delta)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE round_id = ?`, roundID); err != nil {
		return false, fmt.Errorf("failed to delete entries for round %d: %w", roundID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rounds WHERE id = ?`, roundID); err != nil {
		return false, fmt.Errorf("failed to delete round %d: %w", roundID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit undo: %w", err)
	}
	s.metrics.ObserveTxDuration("undo_round", time.Since(start).Seconds())
	s.metrics.IncRoundsUndone()

	log.Info("Undid round", "sessionID", sessionID, "roundID", roundID, "roundNo", roundNo, "entries", len(entries))
	change := pubsub.NewChange(pubsub.EventRoundUndone, sessionID)
	change.RoundID = roundID
	change.RoundNo = roundNo
	for _, e := range entries {
		change.Deltas = append(change.Deltas, schema.Delta{PlayerID: e.PlayerID, Delta: e.Delta})
	}
	if err := s.pubsub.SendMessage(change.Type, change); err != nil {
		log.Error("Failed to publish undo change", "error", err, "roundID", roundID)
	}
	return true, nil
}

// loadEntries reads the whole result set before any write is issued on the
// same transaction.
func loadEntries(ctx context.Context, tx *sql.Tx, roundID int64) ([]schema.Entry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, session_id, round_id, player_id, delta FROM entries WHERE round_id = ?`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var entries []schema.Entry
	for rows.Next() {
		var e schema.Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.RoundID, &e.PlayerID, &e.Delta); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
