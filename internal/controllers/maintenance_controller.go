package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/maintenance"
	"fleetops/internal/models"
	"fleetops/internal/validation"
)

// CreateVehicleCheck files a damage report against an assignment outside of
// a reset.
func (h *Handler) CreateVehicleCheck(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in maintenance.ConditionInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	r, err := h.Maintenance.CreateVehicleCheck(c.Request.Context(), c.Param("id"), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListDamageReports(c *gin.Context) {
	list, err := h.Maintenance.ListDamageReports(c.Request.Context(), maintenance.ReportFilter{
		AssignmentID: c.Query("assignmentId"),
		Status:       c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) GetDamageReport(c *gin.Context) {
	r, err := h.Maintenance.GetDamageReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateDamageReportStatus(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var body struct {
		Status models.DamageReportStatus `json:"Status" binding:"required,oneof=Pending Accepted Rejected NA"`
	}
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}
	r, err := h.Maintenance.UpdateDamageReportStatus(c.Request.Context(), c.Param("id"), body.Status, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) ListMaintenanceWorks(c *gin.Context) {
	var f maintenance.WorkFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		respondError(c, validation.Translate(err))
		return
	}
	list, err := h.Maintenance.ListMaintenanceWorks(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) GetMaintenanceWork(c *gin.Context) {
	w, err := h.Maintenance.GetMaintenanceWork(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) UpdateMaintenanceWork(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var p maintenance.WorkPatch
	if err := bindJSON(c, &p); err != nil {
		respondError(c, err)
		return
	}
	w, err := h.Maintenance.UpdateMaintenanceWork(c.Request.Context(), c.Param("id"), p, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) CreateTask(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in maintenance.TaskInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	t, err := h.Maintenance.CreateTask(c.Request.Context(), c.Param("id"), in, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var p maintenance.TaskPatch
	if err := bindJSON(c, &p); err != nil {
		respondError(c, err)
		return
	}
	t, err := h.Maintenance.UpdateTask(c.Request.Context(), c.Param("taskId"), p, who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Maintenance.DeleteTask(c.Request.Context(), c.Param("taskId"), who); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
