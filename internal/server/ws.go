package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultRefresh = 60 * time.Second
	writeWait      = 10 * time.Second
)

// handleScanStream pushes the latest scan on connect and then every refresh seconds until the
// client goes away or the server shuts down.
func (s *Server) handleScanStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	refresh := defaultRefresh
	if v := r.URL.Query().Get("refresh"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid query parameter: refresh"})
			return
		}
		refresh = time.Duration(secs) * time.Second
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log := s.log.With().Str("pair", req.Pair()).Str("request_id", requestIDFrom(ctx)).Logger()
	log.Debug().Dur("refresh", refresh).Msg("scan stream opened")

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	for {
		var payload any
		rec, err := s.svc.Latest(ctx, req)
		if err != nil {
			msg := err.Error()
			if statusFor(err) == http.StatusInternalServerError {
				log.Error().Err(err).Msg("scan stream update failed")
				msg = "Internal server error"
			}
			payload = errorResponse{Error: msg}
		} else {
			payload = newScanResponse(rec)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(payload); err != nil {
			log.Debug().Err(err).Msg("scan stream write failed")
			return
		}

		select {
		case <-gone:
			log.Debug().Msg("scan stream closed by client")
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}
	}
}
