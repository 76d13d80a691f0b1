package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
	"fleetops/internal/middleware"
)

func AdminRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(controllers.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)

		admin.POST("/routes", h.CreateRoute)
		admin.PATCH("/routes/:id", h.UpdateRoute)
		admin.PUT("/routes/:id/stops", h.ReplaceRouteStops)
		admin.DELETE("/routes/:id", h.DeleteRoute)

		admin.POST("/stops", h.CreateStop)
		admin.PATCH("/stops/:id", h.UpdateStop)
		admin.DELETE("/stops/:id", h.DeleteStop)

		admin.POST("/ticket-types", h.CreateTicketType)
		admin.PATCH("/ticket-types/:id", h.UpdateTicketType)
		admin.DELETE("/ticket-types/:id", h.DeleteTicketType)

		admin.POST("/assignments/:id/quota-policies", h.CreateQuotaPolicy)
		admin.PUT("/quota-policies/:policyId", h.UpdateQuotaPolicy)
		admin.DELETE("/quota-policies/:policyId", h.DeleteQuotaPolicy)

		admin.GET("/reports/shortage", h.ShortageReport)
		admin.GET("/reports/revenue", h.RevenueReport)
	}
}
