package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"midatopay.backend/pkg/logger"
)

// ConnectionRegistry accepts websocket clients
type ConnectionRegistry interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type RealtimeHandler struct {
	registry ConnectionRegistry
}

func NewRealtimeHandler(registry ConnectionRegistry) *RealtimeHandler {
	return &RealtimeHandler{registry: registry}
}

// Connect upgrades to a websocket that receives payment_confirmed pushes
// GET /ws
func (h *RealtimeHandler) Connect(c *gin.Context) {
	// the upgrader has already answered the client on failure
	if err := h.registry.ServeWS(c.Writer, c.Request); err != nil {
		logger.Debug(c.Request.Context(), "Websocket upgrade failed", zap.Error(err))
	}
}
