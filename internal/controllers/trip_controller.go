package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/operations"
)

// ListTrips filters by assignmentId, isRevenueRecorded, isExpenseRecorded,
// from, to and completed.
func (h *Handler) ListTrips(c *gin.Context) {
	f := operations.TripFilter{AssignmentID: c.Query("assignmentId")}
	var err error
	if f.IsRevenueRecorded, err = queryBool(c, "isRevenueRecorded"); err != nil {
		respondError(c, err)
		return
	}
	if f.IsExpenseRecorded, err = queryBool(c, "isExpenseRecorded"); err != nil {
		respondError(c, err)
		return
	}
	if f.DispatchedFrom, err = queryTime(c, "from", false); err != nil {
		respondError(c, err)
		return
	}
	if f.DispatchedTo, err = queryTime(c, "to", true); err != nil {
		respondError(c, err)
		return
	}
	completed, err := queryBool(c, "completed")
	if err != nil {
		respondError(c, err)
		return
	}
	f.CompletedOnly = completed != nil && *completed

	trips, err := h.Operations.ListTrips(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trips})
}

func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.Operations.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateTripFlags answers 200 even when some items fail; the body lists
// which ones did.
func (h *Handler) UpdateTripFlags(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var items []operations.TripFlagUpdate
	if err := bindJSON(c, &items); err != nil {
		respondError(c, err)
		return
	}
	res, err := h.Operations.UpdateTripFlags(c.Request.Context(), items, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
