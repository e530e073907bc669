package session

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

// New creates a new SessionService.
func New(db *sql.DB, pubsub pubsub.PubSubClient, metrics metrics.Metrics) SessionService {
	return &store{
		db:      db,
		pubsub:  pubsub,
		metrics: metrics,
	}
}

// Create inserts a session stamped with the current time.
func (s *store) Create(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (name, created_at) VALUES (?, ?)`,
		name, time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	log.Info("Created session", "sessionID", id, "name", name)
	s.publish(pubsub.NewChange(pubsub.EventSessionCreated, id))
	return id, nil
}

// GetAll returns sessions ordered newest first. Sessions created in the same
// millisecond fall back to id order.
func (s *store) GetAll(ctx context.Context) ([]schema.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM sessions ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []schema.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *store) GetByID(ctx context.Context, id int64) (*schema.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sess, err
}

// Delete cascades in dependency order: entries, totals, rounds, players and
// finally the session row. Nothing is visible until the commit.
func (s *store) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cascade := []struct {
		table string
		query string
	}{
		{"entries", `DELETE FROM entries WHERE session_id = ?`},
		{"totals", `DELETE FROM totals WHERE session_id = ?`},
		{"rounds", `DELETE FROM rounds WHERE session_id = ?`},
		{"players", `DELETE FROM players WHERE session_id = ?`},
		{"sessions", `DELETE FROM sessions WHERE id = ?`},
	}
	removed := make(map[string]int64, len(cascade))
	for _, step := range cascade {
		res, err := tx.ExecContext(ctx, step.query, id)
		if err != nil {
			return fmt.Errorf("failed to delete %s for session %d: %w", step.table, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count deleted %s: %w", step.table, err)
		}
		removed[step.table] = n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}
	s.metrics.ObserveTxDuration("delete_session", time.Since(start).Seconds())

	if removed["sessions"] == 0 {
		log.Debug("Session delete found no session row", "sessionID", id)
	} else {
		s.metrics.IncSessionsDeleted()
	}
	log.Info("Deleted session", "sessionID", id,
		"players", removed["players"], "rounds", removed["rounds"],
		"entries", removed["entries"], "totals", removed["totals"])
	s.publish(pubsub.NewChange(pubsub.EventSessionDeleted, id))
	return nil
}

func (s *store) publish(change pubsub.Change) {
	if err := s.pubsub.SendMessage(change.Type, change); err != nil {
		log.Error("Failed to publish session change", "error", err, "type", change.Type, "sessionID", change.SessionID)
	}
}

func scanSession(scanner interface{ Scan(...any) error }) (*schema.Session, error) {
	var sess schema.Session
	var createdAt int64
	if err := scanner.Scan(&sess.ID, &sess.Name, &createdAt); err != nil {
		return nil, err
	}
	sess.CreatedAt = time.UnixMilli(createdAt)
	return &sess, nil
}
