package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
)

// WebSocketRoutes authenticates through the ?token= query parameter rather
// than RequireAuth.
func WebSocketRoutes(r *gin.Engine, h *controllers.Handler) {
	r.GET("/healthz", h.Health)

	ws := r.Group("/ws")
	{
		ws.GET("/operations", h.HandleOperationsWebSocket)
	}
}
