// Package controllers holds the gin handlers. Handlers decode and validate
// the request, call one service operation and render its result.
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/catalog"
	"fleetops/internal/feed"
	"fleetops/internal/maintenance"
	"fleetops/internal/middleware"
	"fleetops/internal/operations"
	"fleetops/internal/rental"
	"fleetops/internal/reports"
	"fleetops/internal/validation"
)

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			panic(err)
		}
	}
}

// Handler carries every dependency the HTTP layer needs.
type Handler struct {
	DB          *gorm.DB
	Cache       *cache.Cache
	Verifier    *middleware.Verifier
	Hub         *feed.Hub
	Operations  *operations.Service
	Maintenance *maintenance.Service
	Rentals     *rental.Service
	Catalog     *catalog.Service
	Reports     *reports.Service
}

// bindJSON binds the body into dst and runs its binding tags. Unknown
// fields are rejected.
func bindJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return apperr.Validation("request body is required")
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return validation.Translate(err)
	}
	return nil
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return validation.Translate(err)
	}
	return nil
}

// respondError renders err as {"error": message}. Internal failures are
// logged and their detail withheld from the client.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actor returns the authenticated operator or renders 401.
func actor(c *gin.Context) (string, bool) {
	a, err := middleware.Actor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return a, true
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.ValidationError{Field: name, Msg: "must be true or false"}
	}
	return &v, nil
}

// queryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date.
// endOfDay moves a bare date to its last second.
func queryTime(c *gin.Context, name string, endOfDay bool) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.ValidationError{Field: name, Msg: "must be an RFC 3339 timestamp or YYYY-MM-DD date"}
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Second)
	}
	return d, nil
}
