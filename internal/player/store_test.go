package player_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/mauv0809/scorekeeper/internal/database"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/player"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/round"
	"github.com/mauv0809/scorekeeper/internal/schema"
	"github.com/mauv0809/scorekeeper/internal/session"
	"github.com/mauv0809/scorekeeper/internal/total"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (player.PlayerService, *sql.DB, *pubsub.MockPubSubClient, *metrics.Mock, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(database.DriverSQLite3, ":memory:", "../../migrations")
	require.NoError(t, err)

	ps := pubsub.NewMock()
	m := metrics.NewMock()
	return player.New(db, ps, m), db, ps, m, teardown
}

func newSession(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	id, err := session.New(db, pubsub.NewMock(), metrics.NewMock()).Create(context.Background(), name)
	require.NoError(t, err)
	return id
}

func TestCreate_SeedsZeroTotal(t *testing.T) {
	store, db, ps, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	sessionID := newSession(t, db, "Friday")
	playerID, err := store.Create(ctx, sessionID, "Alice")
	require.NoError(t, err)

	p, err := store.GetByID(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, sessionID, p.SessionID)
	assert.True(t, p.Active)
	assert.False(t, p.CreatedAt.IsZero())

	tot, err := total.New(db).GetPlayerTotal(ctx, sessionID, playerID)
	require.NoError(t, err)
	require.NotNil(t, tot, "a player must never exist without a total")
	assert.Equal(t, 0, tot.Total)
	assert.Equal(t, schema.TotalKey(sessionID, playerID), tot.ID)

	assert.Equal(t, []pubsub.EventType{pubsub.EventPlayerCreated}, ps.Topics())
	assert.Equal(t, playerID, ps.Changes()[0].PlayerID)
}

func TestGetBySession(t *testing.T) {
	store, db, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	s1 := newSession(t, db, "one")
	s2 := newSession(t, db, "two")
	a, err := store.Create(ctx, s1, "A")
	require.NoError(t, err)
	b, err := store.Create(ctx, s1, "B")
	require.NoError(t, err)
	_, err = store.Create(ctx, s2, "C")
	require.NoError(t, err)
	require.NoError(t, store.ToggleActive(ctx, b))

	t.Run("all players in creation order", func(t *testing.T) {
		players, err := store.GetBySession(ctx, s1)
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, a, players[0].ID)
		assert.Equal(t, b, players[1].ID)
	})

	t.Run("only active players", func(t *testing.T) {
		players, err := store.GetActiveBySession(ctx, s1)
		require.NoError(t, err)
		require.Len(t, players, 1)
		assert.Equal(t, a, players[0].ID)
	})

	t.Run("empty session returns empty slice", func(t *testing.T) {
		players, err := store.GetBySession(ctx, 999)
		require.NoError(t, err)
		assert.NotNil(t, players)
		assert.Len(t, players, 0)
	})
}

func TestRename(t *testing.T) {
	store, db, ps, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	sessionID := newSession(t, db, "s")
	playerID, err := store.Create(ctx, sessionID, "Old")
	require.NoError(t, err)
	ps.Reset()

	t.Run("updates the name", func(t *testing.T) {
		require.NoError(t, store.Rename(ctx, playerID, "New"))
		p, err := store.GetByID(ctx, playerID)
		require.NoError(t, err)
		assert.Equal(t, "New", p.Name)
		assert.True(t, p.Active, "rename must not touch other fields")
		assert.Equal(t, []pubsub.EventType{pubsub.EventPlayerUpdated}, ps.Topics())
	})

	t.Run("empty names are not validated here", func(t *testing.T) {
		require.NoError(t, store.Rename(ctx, playerID, ""))
		p, err := store.GetByID(ctx, playerID)
		require.NoError(t, err)
		assert.Equal(t, "", p.Name)
	})

	t.Run("missing player is a silent no-op", func(t *testing.T) {
		ps.Reset()
		assert.NoError(t, store.Rename(ctx, 12345, "Ghost"))
		assert.Empty(t, ps.Topics())
	})
}

func TestToggleActive(t *testing.T) {
	store, db, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	sessionID := newSession(t, db, "s")
	playerID, err := store.Create(ctx, sessionID, "P")
	require.NoError(t, err)

	require.NoError(t, store.ToggleActive(ctx, playerID))
	p, err := store.GetByID(ctx, playerID)
	require.NoError(t, err)
	assert.False(t, p.Active)

	require.NoError(t, store.ToggleActive(ctx, playerID))
	p, err = store.GetByID(ctx, playerID)
	require.NoError(t, err)
	assert.True(t, p.Active)

	assert.NoError(t, store.ToggleActive(ctx, 4242), "missing player is a no-op")
}

func TestCreateDefaultPlayers(t *testing.T) {
	store, db, _, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	t.Run("defaults to four players", func(t *testing.T) {
		sessionID := newSession(t, db, "defaults")
		require.NoError(t, store.CreateDefaultPlayers(ctx, sessionID, 0))

		players, err := store.GetBySession(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, players, player.DefaultPlayerCount)

		for i, p := range players {
			assert.Equal(t, fmt.Sprintf("Player %d", i+1), p.Name)
			tot, err := total.New(db).GetPlayerTotal(ctx, sessionID, p.ID)
			require.NoError(t, err)
			require.NotNil(t, tot)
		}
	})

	t.Run("honours an explicit count", func(t *testing.T) {
		sessionID := newSession(t, db, "six")
		require.NoError(t, store.CreateDefaultPlayers(ctx, sessionID, 6))

		players, err := store.GetBySession(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, players, 6)
	})

	t.Run("ids follow the names in every session", func(t *testing.T) {
		for s := 0; s < 10; s++ {
			sessionID := newSession(t, db, fmt.Sprintf("order %d", s))
			require.NoError(t, store.CreateDefaultPlayers(ctx, sessionID, 6))

			players, err := store.GetBySession(ctx, sessionID)
			require.NoError(t, err)
			require.Len(t, players, 6)
			for i, p := range players {
				require.Equal(t, fmt.Sprintf("Player %d", i+1), p.Name, "session %d", sessionID)
			}
		}
	})

	t.Run("rejects counts above the maximum", func(t *testing.T) {
		sessionID := newSession(t, db, "huge")
		err := store.CreateDefaultPlayers(ctx, sessionID, player.MaxDefaultPlayers+1)
		require.ErrorIs(t, err, schema.ErrTooManyPlayers)

		players, err := store.GetBySession(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, players)
	})
}

func TestDelete(t *testing.T) {
	store, db, ps, m, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	sessionID := newSession(t, db, "s")
	a, err := store.Create(ctx, sessionID, "A")
	require.NoError(t, err)
	b, err := store.Create(ctx, sessionID, "B")
	require.NoError(t, err)

	rounds := round.New(db, pubsub.NewMock(), metrics.NewMock())
	roundID, err := rounds.CreateRound(ctx, sessionID, []schema.Delta{{PlayerID: a, Delta: 5}, {PlayerID: b, Delta: -5}}, nil)
	require.NoError(t, err)
	_, err = rounds.CreateRound(ctx, sessionID, []schema.Delta{{PlayerID: a, Delta: 2}, {PlayerID: b, Delta: -2}}, nil)
	require.NoError(t, err)
	ps.Reset()

	require.NoError(t, store.Delete(ctx, a))

	p, err := store.GetByID(ctx, a)
	require.NoError(t, err)
	assert.Nil(t, p)

	var entries int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM entries WHERE player_id = ?`, a).Scan(&entries))
	assert.Zero(t, entries)

	tot, err := total.New(db).GetPlayerTotal(ctx, sessionID, a)
	require.NoError(t, err)
	assert.Nil(t, tot)

	// The round and the other player's data are left intact.
	remaining, err := rounds.GetRoundEntries(ctx, roundID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, b, remaining[0].PlayerID)

	all, err := rounds.GetBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, all, 2, "rounds are not removed or renumbered")

	bTotal, err := total.New(db).GetPlayerTotal(ctx, sessionID, b)
	require.NoError(t, err)
	assert.Equal(t, -7, bTotal.Total)

	assert.Equal(t, 1, m.PlayersDeleted())
	assert.Equal(t, []pubsub.EventType{pubsub.EventPlayerDeleted}, ps.Topics())

	t.Run("missing player is a no-op", func(t *testing.T) {
		ps.Reset()
		assert.NoError(t, store.Delete(ctx, a))
		assert.Empty(t, ps.Topics())
		assert.Equal(t, 1, m.PlayersDeleted())
	})
}
