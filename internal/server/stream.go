package server

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Aakash-star320/mimevoice/internal/observe"
)

// handleStream upgrades to a websocket and answers each utterance frame with
// one resolve response. The user's command list is re-fetched per frame, so
// command edits apply to the next utterance without reconnecting.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		observe.Logger(r.Context()).Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	userID := r.PathValue("userID")
	log := observe.Logger(ctx)

	s.metrics.ActiveStreams.Add(ctx, 1)
	defer s.metrics.ActiveStreams.Add(ctx, -1)
	log.Info("resolve stream opened", "user_id", userID)

	for {
		var req resolveRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				log.Info("resolve stream closed", "user_id", userID)
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			log.Warn("resolve stream read failed", "user_id", userID, "error", err)
			return
		}

		resolved, err := s.resolveUtterance(ctx, userID, req.Utterance, true)
		if err != nil {
			// Store failures are transient from the client's point of view:
			// report and keep the stream open.
			if werr := wsjson.Write(ctx, conn, errorResponse{Error: "resolve failed"}); werr != nil {
				return
			}
			continue
		}

		if err := wsjson.Write(ctx, conn, resolved); err != nil {
			log.Warn("resolve stream write failed", "user_id", userID, "error", err)
			return
		}
	}
}
