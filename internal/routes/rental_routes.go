package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
)

func RentalRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	rentals := api.Group("/rentals")
	{
		rentals.GET("", h.ListRentalRequests)
		rentals.POST("", h.CreateRentalRequest)
		rentals.GET("/:id", h.GetRentalRequest)
		rentals.POST("/:id/approve", h.ApproveRental)
		rentals.POST("/:id/reject", h.RejectRental)
		rentals.PUT("/:id/drivers", h.AssignRentalDrivers)
		rentals.PATCH("/:id/checklist", h.UpdateRentalChecklist)
		rentals.POST("/:id/start", h.StartRental)
		rentals.POST("/:id/complete", h.CompleteRental)
		rentals.POST("/:id/damage-reports", h.AddRentalDamageReport)
	}
}
