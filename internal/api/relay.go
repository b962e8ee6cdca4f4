package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/lslview/lslview/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsError is the error frame sent before closing a relay connection.
type wsError struct {
	Error string `json:"error"`
}

// wsSample is the wire shape of one relayed sample.
type wsSample struct {
	T float64 `json:"t"`
	D []any   `json:"d"`
}

// handleStreamWS relays one stream to one WebSocket client.
//
// Query params:
//
//	downsample: keep every Nth sample (default 1, clamped to >= 1)
//
// The subscription is released on every exit path, so the shared inlet
// closes as soon as its last viewer disconnects.
func (s *Server) handleStreamWS(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "uid", uid, "error", err)
		return
	}
	defer conn.Close()

	src, ok := s.resolver.Source(uid)
	if !ok {
		_ = conn.WriteJSON(wsError{Error: "Stream " + uid + " not found. Resolve streams first."})
		return
	}

	downsample := 1
	if ds := r.URL.Query().Get("downsample"); ds != "" {
		if n, err := strconv.Atoi(ds); err == nil && n > 1 {
			downsample = n
		}
	}

	sub, err := s.relay.Subscribe(r.Context(), src, relay.LiveQueueCapacity)
	if err != nil {
		_ = conn.WriteJSON(wsError{Error: "Failed to open stream inlet: " + err.Error()})
		return
	}
	defer s.relay.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump: frames from the client are discarded, but a read error
	// is the disconnect signal.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	s.logger.Info("WebSocket client connected", "uid", uid, "downsample", downsample)
	idx := 0
	for {
		sample, err := sub.Next(ctx)
		if err != nil {
			s.logger.Info("WebSocket client disconnected", "uid", uid)
			return
		}
		idx++
		if idx%downsample != 0 {
			continue
		}

		data, err := json.Marshal(wsSample{T: sample.Timestamp, D: sample.Data})
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Info("WebSocket write failed, closing", "uid", uid, "error", err)
			return
		}
	}
}
