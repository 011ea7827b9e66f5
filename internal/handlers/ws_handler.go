package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/config"
	"taskdeck/internal/realtime"
	"taskdeck/internal/services"
)

type WSHandler struct {
	hub  *realtime.Hub
	auth services.AuthService
}

func NewWSHandler(hub *realtime.Hub, auth services.AuthService) *WSHandler {
	return &WSHandler{hub: hub, auth: auth}
}

// GET /ws upgrades to a websocket and serves the realtime channel. The
// connection receives tasks_updated broadcasts immediately; task_due_soon
// pushes start once the client sends an authenticate event with a valid
// bearer token.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		config.Logger.Infof("[ws][upgrade][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade failed"})
		return
	}

	h.hub.Add(conn)
	defer func() {
		h.hub.Remove(conn)
		_ = conn.Close()
	}()

	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			return // disconnect or protocol error; registry entry is cleaned up above
		}
		if ev.Event != realtime.EventAuthenticate {
			continue
		}

		var creds struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(ev.Data, &creds); err != nil || creds.Token == "" {
			config.Logger.Infof("[ws][auth][err] malformed authenticate event")
			continue
		}
		userID, err := h.auth.VerifyToken(creds.Token)
		if err != nil {
			config.Logger.Infof("[ws][auth][err] %v", err)
			continue
		}
		h.hub.Authenticate(userID, conn)
		config.Logger.Infof("[ws][auth][ok] user=%d", userID)
	}
}
