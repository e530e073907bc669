package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/player"
	"github.com/mauv0809/scorekeeper/internal/round"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// sessionFromPath resolves the {id} route parameter to an existing session.
// It writes the error response itself and reports whether to continue.
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	sess, err := s.Sessions.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return 0, false
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %d not found", id))
		return 0, false
	}
	return id, true
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Sessions.GetAll(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := nameFromBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := s.Sessions.Create(r.Context(), name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sess, err := s.Sessions.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if sess == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("session %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Sessions.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		get := s.Players.GetBySession
		if r.URL.Query().Get("active") == "true" {
			get = s.Players.GetActiveBySession
		}
		players, err := get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		name, err := nameFromBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := s.Players.Create(r.Context(), sessionID, name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

// CreateDefaultPlayersHandler accepts an optional {"count": n} body.
func (s *Server) CreateDefaultPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		var req defaultPlayersRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if req.Count < 0 || req.Count > player.MaxDefaultPlayers {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be between 0 and %d", player.MaxDefaultPlayers))
			return
		}
		if err := s.Players.CreateDefaultPlayers(r.Context(), sessionID, req.Count); err != nil {
			writeServiceError(w, err)
			return
		}
		players, err := s.Players.GetBySession(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, players)
	}
}

func (s *Server) RenamePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		name, err := nameFromBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Players.Rename(r.Context(), id, name); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TogglePlayerHandler flips the active flag and returns the updated player.
func (s *Server) TogglePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Players.ToggleActive(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		p, err := s.Players.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("player %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) DeletePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Players.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListRoundsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		rounds, err := s.Rounds.GetBySession(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rounds)
	}
}

func (s *Server) CreateRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		var req createRoundRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		roundID, err := s.Rounds.CreateRound(r.Context(), sessionID, req.Deltas, req.Note)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createRoundResponse{ID: roundID, ZeroSum: round.IsZeroSum(req.Deltas)})
	}
}

func (s *Server) LatestRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		latest, err := s.Rounds.GetLatestRound(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if latest == nil {
			writeError(w, http.StatusNotFound, "session has no rounds")
			return
		}
		writeJSON(w, http.StatusOK, latest)
	}
}

func (s *Server) RoundEntriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		entries, err := s.Rounds.GetRoundEntries(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) UndoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		undone, err := s.Undo.UndoLastRound(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, undoResponse{Undone: undone})
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		standings, err := s.Totals.GetTotalsForSession(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, standings)
	}
}

func (s *Server) PlayerTotalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := idParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		playerID, err := idParam(r, "pid")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tot, err := s.Totals.GetPlayerTotal(r.Context(), sessionID, playerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if tot == nil {
			writeError(w, http.StatusNotFound, "no total for player "+strconv.FormatInt(playerID, 10))
			return
		}
		writeJSON(w, http.StatusOK, tot)
	}
}

func (s *Server) AuditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		drift, err := s.Totals.Audit(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, drift)
	}
}

// NotifyStandingsHandler pushes the current standings to the notifier on
// demand. Honours ?dry_run=true.
func (s *Server) NotifyStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Notifier == nil {
			writeError(w, http.StatusServiceUnavailable, "no notifier configured")
			return
		}
		id, ok := s.sessionFromPath(w, r)
		if !ok {
			return
		}
		sess, err := s.Sessions.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		standings, err := s.Totals.GetTotalsForSession(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		latest, err := s.Rounds.GetLatestRound(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		update := notifier.StandingsUpdate{
			SessionID:   id,
			SessionName: sess.Name,
			Standings:   standings,
		}
		if latest != nil {
			update.RoundNo = latest.RoundNo
		}
		if err := s.Notifier.SendStandings(update, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send standings", "error", err, "sessionID", id)
			writeError(w, http.StatusBadGateway, "failed to send standings")
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
