package routes

import (
	"io"
	"os"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"fleetops/internal/controllers"
	"fleetops/internal/middleware"
)

// Options carries the router settings that come from configuration.
type Options struct {
	CORSOrigins []string
	// AccessLog receives one line per request; stdout when nil.
	AccessLog io.Writer
}

func SetupRouter(h *controllers.Handler, opts Options) *gin.Engine {
	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	r := gin.New()
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(accessLog),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz"}),
	))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(opts.CORSOrigins))

	AuthRoutes(r, h)
	WebSocketRoutes(r, h)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(h.Verifier))
	OperationsRoutes(api, h)
	MaintenanceRoutes(api, h)
	RentalRoutes(api, h)
	CatalogRoutes(api, h)
	AdminRoutes(api, h)

	return r
}
