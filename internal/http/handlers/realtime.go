package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/http/response"
	"github.com/yungbote/careercoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/goals/stream
//
// Streams the caller's goal notifications. A second stream for the same session
// replaces the first.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	client := h.hub.NewSSEClient(rd.UserID)
	if rd.SessionID != uuid.Nil {
		h.mu.Lock()
		if existing, ok := h.clients[rd.SessionID]; ok {
			h.hub.CloseClient(existing)
		}
		h.clients[rd.SessionID] = client
		h.mu.Unlock()
	}
	h.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	h.log.Debug("SSE stream open", "user_id", rd.UserID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	if rd.SessionID != uuid.Nil {
		h.mu.Lock()
		replaced := h.clients[rd.SessionID] != client
		if !replaced {
			delete(h.clients, rd.SessionID)
		}
		h.mu.Unlock()
		if replaced {
			return
		}
	}
	h.hub.CloseClient(client)
}
