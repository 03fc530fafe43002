package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

// Frame types exchanged on the chat websocket.
const (
	FrameQuery    = "query"
	FrameReset    = "reset"
	FrameResponse = "response"
	FrameError    = "error"
)

// Frame is one JSON message on the chat websocket.
type Frame struct {
	Type    string `json:"type"`
	Query   string `json:"query,omitempty"`
	Content string `json:"content,omitempty"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session", sess.ID(), "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxQueryBytes)

	logger := s.logger.With("session", sess.ID())
	logger.Info("websocket connected")

	for {
		var in Frame
		if err := conn.ReadJSON(&in); err != nil {
			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				logger.Info("websocket closed", "code", closeErr.Code)
			case errors.Is(err, websocket.ErrReadLimit):
				logger.Warn("websocket frame too large", "limit", maxQueryBytes)
			default:
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var out Frame
		switch in.Type {
		case FrameQuery:
			out = Frame{Type: FrameResponse, Content: sess.Ask(r.Context(), in.Query)}
		case FrameReset:
			sess.Reset()
			out = Frame{Type: FrameReset}
		default:
			out = Frame{Type: FrameError, Content: "unknown frame type: " + in.Type}
		}

		if err := conn.WriteJSON(out); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
