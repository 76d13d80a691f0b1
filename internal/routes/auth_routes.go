package routes

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
)

func AuthRoutes(r *gin.Engine, h *controllers.Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.SignupUser)
		auth.POST("/login", h.LoginUser)
	}
}
