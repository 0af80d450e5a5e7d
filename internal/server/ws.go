package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// wsError is sent in place of a sample when a frame could not be folded
// into the session.
type wsError struct {
	Error string `json:"error"`
}

// handleLandmarks upgrades the connection and runs the landmark stream
// loop: one JSON frame in, one scored sample out. Frames arriving while
// no session is active are acknowledged with an error message instead of
// tearing the socket down, so a client may connect before pressing start.
func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	s.log.Debug("landmark stream connected", "remote", r.RemoteAddr)
	ctx := r.Context()

	for {
		var frame types.LandmarkFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				return
			}
			s.log.Debug("landmark stream read ended", "error", err)
			return
		}

		s.metrics.LandmarkFrames.Add(ctx, 1)

		sample, accepted, err := s.ctrl.IngestFrame(frame)
		if err != nil {
			if writeErr := wsjson.Write(ctx, conn, wsError{Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if !accepted {
			s.metrics.DiscardedSamples.Add(ctx, 1)
		}

		if err := wsjson.Write(ctx, conn, sample); err != nil {
			s.log.Debug("landmark stream write ended", "error", err)
			return
		}
	}
}
