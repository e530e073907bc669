package round

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

const roundColumns = `id, session_id, round_no, note, created_at`

// New creates a new RoundService.
func New(db *sql.DB, pubsub pubsub.PubSubClient, metrics metrics.Metrics) RoundService {
	return &store{
		db:      db,
		pubsub:  pubsub,
		metrics: metrics,
	}
}

func (s *store) CreateRound(ctx context.Context, sessionID int64, deltas []schema.Delta, note *string) (int64, error) {
	start := time.Now()

	if err := checkDuplicates(deltas); err != nil {
		s.metrics.IncRoundsRejected()
		log.Warn("Rejected round", "sessionID", sessionID, "error", err)
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	active, err := activePlayerIDs(ctx, tx, sessionID)
	if err != nil {
		return 0, err
	}
	if missing := missingPlayers(active, deltas); len(missing) > 0 {
		s.metrics.IncRoundsRejected()
		log.Warn("Rejected round with missing deltas", "sessionID", sessionID, "missing", missing)
		return 0, fmt.Errorf("%w: %v", schema.ErrMissingDeltas, missing)
	}

	var roundNo int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(round_no), 0) + 1 FROM rounds WHERE session_id = ?`,
		sessionID,
	).Scan(&roundNo)
	if err != nil {
		return 0, fmt.Errorf("failed to compute round number: %w", err)
	}

	now := time.Now().UnixMilli()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO rounds (session_id, round_no, note, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, roundNo, note, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert round: %w", err)
	}
	roundID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read round id: %w", err)
	}

	if err := insertEntries(ctx, tx, sessionID, roundID, deltas); err != nil {
		return 0, err
	}
	if err := s.applyDeltas(ctx, tx, sessionID, deltas, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit round: %w", err)
	}
	s.metrics.ObserveTxDuration("create_round", time.Since(start).Seconds())
	s.metrics.IncRoundsCreated()

	log.Info("Created round", "sessionID", sessionID, "roundID", roundID, "roundNo", roundNo, "entries", len(deltas))
	change := pubsub.NewChange(pubsub.EventRoundCreated, sessionID)
	change.RoundID = roundID
	change.RoundNo = roundNo
	change.Deltas = deltas
	if err := s.pubsub.SendMessage(change.Type, change); err != nil {
		log.Error("Failed to publish round change", "error", err, "roundID", roundID)
	}
	return roundID, nil
}

func activePlayerIDs(ctx context.Context, tx *sql.Tx, sessionID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM players WHERE session_id = ? AND active = 1 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load active players: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertEntries(ctx context.Context, tx *sql.Tx, sessionID, roundID int64, deltas []schema.Delta) error {
	if len(deltas) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, session_id, round_id, player_id, delta) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deltas {
		if _, err := stmt.ExecContext(ctx, schema.EntryKey(roundID, d.PlayerID), sessionID, roundID, d.PlayerID, d.Delta); err != nil {
			return fmt.Errorf("failed to insert entry for player %d: %w", d.PlayerID, err)
		}
	}
	return nil
}

// applyDeltas adds each delta to the player's total inside the round's
// transaction. A missing total row is skipped rather than failing the round;
// every skip is logged and counted so the inconsistency can be spotted.
func (s *store) applyDeltas(ctx context.Context, tx *sql.Tx, sessionID int64, deltas []schema.Delta, now int64) error {
	if len(deltas) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`UPDATE totals SET total = total + ?, updated_at = ? WHERE id = ?`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare total update: %w", err)
	}
	defer stmt.Close()

	for _, d := range deltas {
		res, err := stmt.ExecContext(ctx, d.Delta, now, schema.TotalKey(sessionID, d.PlayerID))
		if err != nil {
			return fmt.Errorf("failed to update total for player %d: %w", d.PlayerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check total update for player %d: %w", d.PlayerID, err)
		}
		if n == 0 {
			s.metrics.IncMissingTotals()
			log.Warn("No total row for player, delta not applied", "sessionID", sessionID, "playerID", d.PlayerID, "delta", d.Delta)
		}
	}
	return nil
}

func (s *store) GetBySession(ctx context.Context, sessionID int64) ([]schema.Round, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE session_id = ? ORDER BY round_no DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []schema.Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *r)
	}
	return rounds, rows.Err()
}

func (s *store) GetRoundEntries(ctx context.Context, roundID int64) ([]schema.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, round_id, player_id, delta FROM entries WHERE round_id = ? ORDER BY rowid`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []schema.Entry{}
	for rows.Next() {
		var e schema.Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.RoundID, &e.PlayerID, &e.Delta); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *store) GetLatestRound(ctx context.Context, sessionID int64) (*schema.Round, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE session_id = ? ORDER BY round_no DESC LIMIT 1`,
		sessionID,
	)
	r, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func scanRound(scanner interface{ Scan(...any) error }) (*schema.Round, error) {
	var r schema.Round
	var note sql.NullString
	var createdAt int64
	if err := scanner.Scan(&r.ID, &r.SessionID, &r.RoundNo, &note, &createdAt); err != nil {
		return nil, err
	}
	if note.Valid {
		r.Note = &note.String
	}
	r.CreatedAt = time.UnixMilli(createdAt)
	return &r, nil
}
