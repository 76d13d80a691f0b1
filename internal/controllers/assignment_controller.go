package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/operations"
)

func (h *Handler) ListAssignments(c *gin.Context) {
	list, err := h.Operations.ListAssignments(c.Request.Context(), operations.AssignmentFilter{
		Status:  c.Query("status"),
		Type:    c.Query("type"),
		RouteID: c.Query("routeId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) GetAssignment(c *gin.Context) {
	view, err := h.Operations.GetAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in operations.CreateAssignmentInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Operations.CreateRegularAssignment(c.Request.Context(), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateAssignment applies a checklist, crew, trip or status patch.
func (h *Handler) UpdateAssignment(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var patch operations.AssignmentPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Operations.UpdateAssignment(c.Request.Context(), c.Param("id"), patch, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ResetAssignment closes the current cycle, filing the damage flags in the
// body as a vehicle check.
func (h *Handler) ResetAssignment(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var damage operations.DamageFields
	if err := bindOptionalJSON(c, &damage); err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Operations.Reset(c.Request.Context(), c.Param("id"), damage, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Operations.DeleteAssignment(c.Request.Context(), c.Param("id"), who); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListQuotaPolicies(c *gin.Context) {
	list, err := h.Operations.ListQuotaPolicies(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) CreateQuotaPolicy(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in operations.QuotaPolicyInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	qp, err := h.Operations.CreateQuotaPolicy(c.Request.Context(), c.Param("id"), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, qp)
}

func (h *Handler) UpdateQuotaPolicy(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in operations.QuotaPolicyInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	qp, err := h.Operations.UpdateQuotaPolicy(c.Request.Context(), c.Param("policyId"), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, qp)
}

func (h *Handler) DeleteQuotaPolicy(c *gin.Context) {
	if err := h.Operations.DeleteQuotaPolicy(c.Request.Context(), c.Param("policyId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
