package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
)

// CatalogRoutes exposes the read side of routes, stops and ticket types.
// Writes live under AdminRoutes.
func CatalogRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	api.GET("/routes", h.ListRoutes)
	api.GET("/routes/:id", h.GetRoute)
	api.GET("/stops", h.ListStops)
	api.GET("/ticket-types", h.ListTicketTypes)
}
