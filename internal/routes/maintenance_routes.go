package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
)

func MaintenanceRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	reports := api.Group("/damage-reports")
	{
		reports.GET("", h.ListDamageReports)
		reports.GET("/:id", h.GetDamageReport)
		reports.PUT("/:id/status", h.UpdateDamageReportStatus)
	}

	works := api.Group("/maintenance-works")
	{
		works.GET("", h.ListMaintenanceWorks)
		works.GET("/:id", h.GetMaintenanceWork)
		works.PATCH("/:id", h.UpdateMaintenanceWork)
		works.POST("/:id/tasks", h.CreateTask)
	}

	tasks := api.Group("/tasks")
	{
		tasks.PATCH("/:taskId", h.UpdateTask)
		tasks.DELETE("/:taskId", h.DeleteTask)
	}
}
