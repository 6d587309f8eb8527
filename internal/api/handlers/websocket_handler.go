package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/openrides/openrides/internal/api/middleware"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/websocket"
)

// HandleWebSocket handles GET /v1/ws
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	caller := middleware.CallerProfile(c)

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  h.WSConfig.ReadBufferSize,
		WriteBufferSize: h.WSConfig.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // dev origins are unrestricted; a reverse proxy gates prod
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, caller.ID.String(), h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// ExpireStaleRequests handles POST /internal/expire-stale. The sweeper runs
// the same pass on a timer; this endpoint exists for operators.
func (h *Handlers) ExpireStaleRequests(c *gin.Context) {
	count, err := h.Ledger.ExpireStale(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}
