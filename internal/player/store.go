package player

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/schema"
	"golang.org/x/sync/errgroup"
)

const playerColumns = `id, session_id, name, created_at, active`

// New creates a new PlayerService.
func New(db *sql.DB, pubsub pubsub.PubSubClient, metrics metrics.Metrics) PlayerService {
	return &store{
		db:      db,
		pubsub:  pubsub,
		metrics: metrics,
	}
}

// Create inserts the player and its total row in one transaction, so a reader
// never sees a player without a total.
func (s *store) Create(ctx context.Context, sessionID int64, name string) (int64, error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO players (session_id, name, created_at, active) VALUES (?, ?, ?, 1)`,
		sessionID, name, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert player: %w", err)
	}
	playerID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read player id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO totals (id, session_id, player_id, total, updated_at)
		VALUES (?, ?, ?, 0, ?)`,
		schema.TotalKey(sessionID, playerID), sessionID, playerID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to seed total for player %d: %w", playerID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit player create: %w", err)
	}
	s.metrics.ObserveTxDuration("create_player", time.Since(start).Seconds())

	log.Info("Created player", "sessionID", sessionID, "playerID", playerID, "name", name)
	change := pubsub.NewChange(pubsub.EventPlayerCreated, sessionID)
	change.PlayerID = playerID
	s.publish(change)
	return playerID, nil
}

// CreateDefaultPlayers runs the creates one at a time so ids follow the
// names. They are independent transactions, not one.
func (s *store) CreateDefaultPlayers(ctx context.Context, sessionID int64, count int) error {
	if count < 1 {
		count = DefaultPlayerCount
	}
	if count > MaxDefaultPlayers {
		return fmt.Errorf("%w: %d, at most %d", schema.ErrTooManyPlayers, count, MaxDefaultPlayers)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(1)
	for i := 1; i <= count; i++ {
		g.Go(func() error {
			_, err := s.Create(gCtx, sessionID, fmt.Sprintf("Player %d", i))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to create default players: %w", err)
	}
	return nil
}

func (s *store) GetByID(ctx context.Context, playerID int64) (*schema.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, playerID)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *store) GetBySession(ctx context.Context, sessionID int64) ([]schema.Player, error) {
	return s.queryPlayers(ctx,
		`SELECT `+playerColumns+` FROM players WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
}

func (s *store) GetActiveBySession(ctx context.Context, sessionID int64) ([]schema.Player, error) {
	return s.queryPlayers(ctx,
		`SELECT `+playerColumns+` FROM players WHERE session_id = ? AND active = 1 ORDER BY id`,
		sessionID,
	)
}

func (s *store) queryPlayers(ctx context.Context, query string, args ...any) ([]schema.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []schema.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// Rename does not validate the name; rejecting empty names is up to the caller.
func (s *store) Rename(ctx context.Context, playerID int64, name string) error {
	var sessionID int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE players SET name = ? WHERE id = ? RETURNING session_id`,
		name, playerID,
	).Scan(&sessionID)
	if err == sql.ErrNoRows {
		log.Debug("Rename ignored for unknown player", "playerID", playerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to rename player %d: %w", playerID, err)
	}

	log.Info("Renamed player", "playerID", playerID, "name", name)
	change := pubsub.NewChange(pubsub.EventPlayerUpdated, sessionID)
	change.PlayerID = playerID
	s.publish(change)
	return nil
}

// ToggleActive flips the flag in a single statement, so concurrent toggles
// cannot lose an update.
func (s *store) ToggleActive(ctx context.Context, playerID int64) error {
	var sessionID int64
	var active bool
	err := s.db.QueryRowContext(ctx,
		`UPDATE players SET active = 1 - active WHERE id = ? RETURNING session_id, active`,
		playerID,
	).Scan(&sessionID, &active)
	if err == sql.ErrNoRows {
		log.Debug("Toggle ignored for unknown player", "playerID", playerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to toggle player %d: %w", playerID, err)
	}

	log.Info("Toggled player", "playerID", playerID, "active", active)
	change := pubsub.NewChange(pubsub.EventPlayerUpdated, sessionID)
	change.PlayerID = playerID
	s.publish(change)
	return nil
}

// Delete leaves historical rounds without an entry for this player. Other
// totals stay correct because each total only sums its own player's entries.
func (s *store) Delete(ctx context.Context, playerID int64) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sessionID int64
	err = tx.QueryRowContext(ctx, `SELECT session_id FROM players WHERE id = ?`, playerID).Scan(&sessionID)
	if err == sql.ErrNoRows {
		log.Debug("Delete ignored for unknown player", "playerID", playerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load player %d: %w", playerID, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE player_id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete entries for player %d: %w", playerID, err)
	}
	entries, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted entries for player %d: %w", playerID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM totals WHERE id = ?`, schema.TotalKey(sessionID, playerID)); err != nil {
		return fmt.Errorf("failed to delete total for player %d: %w", playerID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, playerID); err != nil {
		return fmt.Errorf("failed to delete player %d: %w", playerID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player delete: %w", err)
	}
	s.metrics.ObserveTxDuration("delete_player", time.Since(start).Seconds())
	s.metrics.IncPlayersDeleted()

	log.Info("Deleted player", "sessionID", sessionID, "playerID", playerID, "entries", entries)
	change := pubsub.NewChange(pubsub.EventPlayerDeleted, sessionID)
	change.PlayerID = playerID
	s.publish(change)
	return nil
}

func (s *store) publish(change pubsub.Change) {
	if err := s.pubsub.SendMessage(change.Type, change); err != nil {
		log.Error("Failed to publish player change", "error", err, "type", change.Type, "playerID", change.PlayerID)
	}
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*schema.Player, error) {
	var p schema.Player
	var createdAt int64
	if err := scanner.Scan(&p.ID, &p.SessionID, &p.Name, &createdAt, &p.Active); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(createdAt)
	return &p, nil
}
