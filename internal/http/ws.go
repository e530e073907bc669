package http

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	changeBuffer = 64
)

func (s *Server) upgrader() *websocket.Upgrader {
	origins := s.Cfg.CORSOrigins
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(origins) == 0 || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
}

// ChangesHandler streams committed changes as JSON text frames. With
// ?session_id= only that session's changes are sent. Changes are dropped for
// clients that fall behind.
func (s *Server) ChangesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Changes == nil {
			writeError(w, http.StatusServiceUnavailable, "change feed not available")
			return
		}
		var sessionID int64
		if raw := r.URL.Query().Get("session_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				writeError(w, http.StatusBadRequest, "invalid session_id")
				return
			}
			sessionID = id
		}

		// Subscribe before the handshake completes so no change committed after
		// the client is connected can be missed.
		msgs, cancel := s.Changes.Subscribe(changeBuffer)
		defer cancel()

		conn, err := s.upgrader().Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Failed to upgrade websocket connection", "error", err)
			return
		}
		defer conn.Close()
		log.Info("Change stream connected", "remote", r.RemoteAddr, "sessionID", sessionID)

		done := make(chan struct{})
		go readPump(conn, done)

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				log.Info("Change stream disconnected", "remote", r.RemoteAddr)
				return
			case msg, ok := <-msgs:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
					return
				}
				var change pubsub.Change
				if err := pubsub.Decode(msg.Data, &change); err != nil {
					log.Warn("Dropping undecodable change", "error", err, "topic", msg.Topic)
					continue
				}
				if sessionID != 0 && change.SessionID != sessionID {
					continue
				}
				if err := conn.WriteJSON(change); err != nil {
					log.Debug("Failed to write change", "error", err)
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

// readPump discards client frames and keeps the read deadline fresh. It
// closes done once the connection fails.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
