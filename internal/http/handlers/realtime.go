package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/http/response"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
	"github.com/deenkids/deenkids-backend/internal/realtime"
	"github.com/deenkids/deenkids-backend/internal/requestdata"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(baseLog *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		log: baseLog.With("handler", "RealtimeHandler"),
		hub: hub,
	}
}

// Stream serves the SSE feed for one session channel. The connection stays
// open until the client goes away or the server shuts down.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", nil)
		return
	}

	client := rh.hub.NewClient(rd.UserID)
	rh.hub.Subscribe(client, realtime.SessionChannel(sessionID.String()))
	defer rh.hub.RemoveClient(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	rh.log.Info("sse stream open", "user_id", rd.UserID, "session_id", sessionID)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-rh.hub.Done(client):
			return
		case msg := <-client.Outbound:
			payload, err := json.Marshal(msg)
			if err != nil {
				rh.log.Warn("skipping unmarshalable sse message", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", msg.Event, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
