package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetops/internal/catalog"
)

func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.Catalog.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

func (h *Handler) GetRoute(c *gin.Context) {
	route, err := h.Catalog.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *Handler) CreateRoute(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in catalog.RouteInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	route, err := h.Catalog.CreateRoute(c.Request.Context(), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

func (h *Handler) UpdateRoute(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var p catalog.RoutePatch
	if err := bindJSON(c, &p); err != nil {
		respondError(c, err)
		return
	}
	route, err := h.Catalog.UpdateRoute(c.Request.Context(), c.Param("id"), p, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// ReplaceRouteStops takes the complete ordered stop list.
func (h *Handler) ReplaceRouteStops(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var body struct {
		StopIDs []string `json:"StopIDs" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	route, err := h.Catalog.ReplaceRouteStops(c.Request.Context(), c.Param("id"), body.StopIDs, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *Handler) DeleteRoute(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteRoute(c.Request.Context(), c.Param("id"), who); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListStops(c *gin.Context) {
	stops, err := h.Catalog.ListStops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stops})
}

func (h *Handler) CreateStop(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in catalog.StopInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	stop, err := h.Catalog.CreateStop(c.Request.Context(), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stop)
}

func (h *Handler) UpdateStop(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var p catalog.StopPatch
	if err := bindJSON(c, &p); err != nil {
		respondError(c, err)
		return
	}
	stop, err := h.Catalog.UpdateStop(c.Request.Context(), c.Param("id"), p, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stop)
}

func (h *Handler) DeleteStop(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteStop(c.Request.Context(), c.Param("id"), who); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTicketTypes(c *gin.Context) {
	types, err := h.Catalog.ListTicketTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (h *Handler) CreateTicketType(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in catalog.TicketTypeInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	tt, err := h.Catalog.CreateTicketType(c.Request.Context(), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tt)
}

func (h *Handler) UpdateTicketType(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var body struct {
		Value decimal.Decimal `json:"Value"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	tt, err := h.Catalog.UpdateTicketType(c.Request.Context(), c.Param("id"), body.Value, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tt)
}

func (h *Handler) DeleteTicketType(c *gin.Context) {
	if err := h.Catalog.DeleteTicketType(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
