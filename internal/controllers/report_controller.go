package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/reports"
)

func period(c *gin.Context) (reports.Period, error) {
	from, err := queryTime(c, "from", false)
	if err != nil {
		return reports.Period{}, err
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return reports.Period{}, err
	}
	return reports.Period{From: from, To: to}, nil
}

func (h *Handler) ShortageReport(c *gin.Context) {
	p, err := period(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.Reports.ShortageReport(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handler) RevenueReport(c *gin.Context) {
	p, err := period(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.Reports.RevenueReport(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
