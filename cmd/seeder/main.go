package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/config"
	"github.com/mauv0809/scorekeeper/internal/database"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/player"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/round"
	"github.com/mauv0809/scorekeeper/internal/schema"
	"github.com/mauv0809/scorekeeper/internal/session"
	"github.com/mauv0809/scorekeeper/internal/total"
	"github.com/mauv0809/scorekeeper/internal/undo"
)

const (
	numPlayers = 4
	numRounds  = 200
	// Roughly one in undoEvery steps undoes the latest round instead.
	undoEvery = 8
)

// seeder records demo data through the services.
type seeder struct {
	sessions session.SessionService
	players  player.PlayerService
	rounds   round.RoundService
	undos    undo.UndoService
	totals   total.TotalService
	rng      *rand.Rand
}

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()

	db, teardown, err := database.InitDB(cfg.DB.Driver, cfg.DB.Name, cfg.DB.MigrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.", "driver", cfg.DB.Driver, "name", cfg.DB.Name)

	// Nothing subscribes to the broker here, so changes are dropped.
	broker := pubsub.NewBroker()
	defer broker.Close()
	m := metrics.NewService()

	s := &seeder{
		sessions: session.New(db, broker, m),
		players:  player.New(db, broker, m),
		rounds:   round.New(db, broker, m),
		undos:    undo.New(db, broker, m),
		totals:   total.New(db),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	startTime := time.Now()
	name := fmt.Sprintf("Seeded session %s", time.Now().Format(time.DateTime))
	sessionID, err := s.seed(context.Background(), name, numPlayers, numRounds)
	if err != nil {
		log.Fatalf("Failed to seed session: %s", err)
	}

	standings, err := s.totals.GetTotalsForSession(context.Background(), sessionID)
	if err != nil {
		log.Fatalf("Failed to load standings: %s", err)
	}
	for i, st := range standings {
		log.Info("Standing", "rank", i+1, "player", st.PlayerName, "total", st.Total.Total)
	}
	log.Info("Successfully seeded session.", "sessionID", sessionID, "duration", time.Since(startTime))
}

// seed creates a session with default players and records numRounds random
// zero-sum rounds, undoing one now and then. It fails if any total drifts
// from its entries.
func (s *seeder) seed(ctx context.Context, name string, players, rounds int) (int64, error) {
	sessionID, err := s.sessions.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.players.CreateDefaultPlayers(ctx, sessionID, players); err != nil {
		return 0, fmt.Errorf("failed to create players: %w", err)
	}
	active, err := s.players.GetActiveBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load players: %w", err)
	}
	log.Info("Created session", "sessionID", sessionID, "players", len(active))

	log.Info("Preparing to record rounds...", "total", rounds)
	recorded := 0
	for recorded < rounds {
		if recorded > 0 && s.rng.Intn(undoEvery) == 0 {
			if _, err := s.undos.UndoLastRound(ctx, sessionID); err != nil {
				return 0, fmt.Errorf("failed to undo round: %w", err)
			}
			recorded--
			continue
		}
		if _, err := s.rounds.CreateRound(ctx, sessionID, zeroSumDeltas(s.rng, active), nil); err != nil {
			return 0, fmt.Errorf("failed to record round: %w", err)
		}
		recorded++
		if recorded%50 == 0 {
			log.Info("Recorded rounds", "completed", recorded, "total", rounds)
		}
	}

	drift, err := s.totals.Audit(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to audit totals: %w", err)
	}
	if len(drift) > 0 {
		return 0, fmt.Errorf("totals drifted from entries for %d players", len(drift))
	}
	return sessionID, nil
}

// zeroSumDeltas gives every player a random delta, with the last player
// balancing the round.
func zeroSumDeltas(rng *rand.Rand, players []schema.Player) []schema.Delta {
	deltas := make([]schema.Delta, len(players))
	sum := 0
	for i, p := range players {
		deltas[i] = schema.Delta{PlayerID: p.ID}
		if i == len(players)-1 {
			deltas[i].Delta = -sum
			break
		}
		d := rng.Intn(41) - 20
		deltas[i].Delta = d
		sum += d
	}
	return deltas
}
