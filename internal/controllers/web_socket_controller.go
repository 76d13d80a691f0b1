package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleetops/internal/config"
	"fleetops/internal/feed"
)

// HandleOperationsWebSocket streams assignment and rental transitions.
// Browsers cannot set headers on a websocket handshake, so the token
// travels in the query string. ?topic=rentals narrows the stream.
func (h *Handler) HandleOperationsWebSocket(c *gin.Context) {
	claims, err := h.Verifier.Verify(c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	topic := c.DefaultQuery("topic", feed.TopicOperations)
	if topic != feed.TopicOperations && topic != feed.TopicRentals {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic must be operations or rentals"})
		return
	}
	log := logrus.WithFields(logrus.Fields{"actor": claims.Subject, "topic": topic})
	log.Info("WebSocket client connected")
	if err := h.Hub.Serve(c.Writer, c.Request, topic); err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	log.Info("WebSocket client disconnected")
}

// Health pings the database and reports whether the cache answers. A cache
// outage degrades reads but does not fail the check.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := config.Ping(ctx, h.DB); err != nil {
		logrus.WithError(err).Error("Health: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "database": "unreachable"})
		return
	}
	cacheStatus := "disabled"
	if h.Cache != nil {
		cacheStatus = "ok"
		if err := h.Cache.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Health: cache unreachable")
			cacheStatus = "unreachable"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok", "cache": cacheStatus})
}
