package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
)

func OperationsRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	assignments := api.Group("/assignments")
	{
		assignments.GET("", h.ListAssignments)
		assignments.POST("", h.CreateAssignment)
		assignments.GET("/:id", h.GetAssignment)
		assignments.PATCH("/:id", h.UpdateAssignment)
		assignments.POST("/:id/reset", h.ResetAssignment)
		assignments.DELETE("/:id", h.DeleteAssignment)
		assignments.POST("/:id/vehicle-checks", h.CreateVehicleCheck)
		assignments.GET("/:id/quota-policies", h.ListQuotaPolicies)
	}

	trips := api.Group("/trips")
	{
		trips.GET("", h.ListTrips)
		trips.GET("/:id", h.GetTrip)
		trips.PATCH("/flags", h.UpdateTripFlags)
	}

	api.GET("/dashboard", h.Dashboard)
}
