package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/maintenance"
	"fleetops/internal/models"
	"fleetops/internal/rental"
)

func (h *Handler) CreateRentalRequest(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in rental.CreateRequestInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	rr, err := h.Rentals.CreateRentalRequest(c.Request.Context(), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rr)
}

func (h *Handler) ListRentalRequests(c *gin.Context) {
	list, err := h.Rentals.ListRentalRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) GetRentalRequest(c *gin.Context) {
	rr, err := h.Rentals.GetRentalRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

// rentalCommand runs a body-less transition.
func (h *Handler) rentalCommand(c *gin.Context, run func(id, actor string) (*models.RentalRequest, error)) {
	who, ok := actor(c)
	if !ok {
		return
	}
	rr, err := run(c.Param("id"), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (h *Handler) ApproveRental(c *gin.Context) {
	h.rentalCommand(c, func(id, who string) (*models.RentalRequest, error) {
		return h.Rentals.Approve(c.Request.Context(), id, who)
	})
}

func (h *Handler) StartRental(c *gin.Context) {
	h.rentalCommand(c, func(id, who string) (*models.RentalRequest, error) {
		return h.Rentals.ToInOperation(c.Request.Context(), id, who)
	})
}

func (h *Handler) RejectRental(c *gin.Context) {
	var body struct {
		Reason string `json:"Reason"`
	}
	if err := bindOptionalJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	h.rentalCommand(c, func(id, who string) (*models.RentalRequest, error) {
		return h.Rentals.Reject(c.Request.Context(), id, body.Reason, who)
	})
}

func (h *Handler) AssignRentalDrivers(c *gin.Context) {
	var body struct {
		DriverIDs []string `json:"DriverIDs" binding:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	h.rentalCommand(c, func(id, who string) (*models.RentalRequest, error) {
		return h.Rentals.AssignDrivers(c.Request.Context(), id, body.DriverIDs, who)
	})
}

func (h *Handler) UpdateRentalChecklist(c *gin.Context) {
	var p rental.ChecklistPatch
	if err := bindJSON(c, &p); err != nil {
		respondError(c, err)
		return
	}
	h.rentalCommand(c, func(id, who string) (*models.RentalRequest, error) {
		return h.Rentals.UpdateChecklist(c.Request.Context(), id, p, who)
	})
}

// CompleteRental closes an in-operation rental. A body, when present, is
// the return inspection and is filed as a damage report.
func (h *Handler) CompleteRental(c *gin.Context) {
	var damage *maintenance.ConditionInput
	if c.Request.ContentLength != 0 {
		damage = &maintenance.ConditionInput{}
		if err := bindOptionalJSON(c, damage); err != nil {
			respondError(c, err)
			return
		}
	}
	h.rentalCommand(c, func(id, who string) (*models.RentalRequest, error) {
		return h.Rentals.Complete(c.Request.Context(), id, damage, who)
	})
}

func (h *Handler) AddRentalDamageReport(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in maintenance.ConditionInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	r, err := h.Rentals.AddDamageReport(c.Request.Context(), c.Param("id"), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
