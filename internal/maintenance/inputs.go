package maintenance

import (
	"strings"
	"time"

	"fleetops/internal/ids"
	"fleetops/internal/models"
	"fleetops/internal/optional"
	"fleetops/internal/validation"
)

// ConditionInput is a vehicle check. An absent flag means the item is in
// order.
type ConditionInput struct {
	Battery       *bool                      `json:"Battery"`
	Lights        *bool                      `json:"Lights"`
	Oil           *bool                      `json:"Oil"`
	Water         *bool                      `json:"Water"`
	Brake         *bool                      `json:"Brake"`
	Air           *bool                      `json:"Air"`
	Gas           *bool                      `json:"Gas"`
	Engine        *bool                      `json:"Engine"`
	TireCondition *bool                      `json:"TireCondition"`
	Note          *string                    `json:"Note"`
	Status        *models.DamageReportStatus `json:"Status" binding:"omitempty,oneof=Pending Accepted Rejected NA"`
}

func (in ConditionInput) Validate() error {
	return validation.Struct(in)
}

func (in ConditionInput) Condition() models.VehicleCondition {
	ok := func(v *bool) bool { return v == nil || *v }
	return models.VehicleCondition{
		Battery:       ok(in.Battery),
		Lights:        ok(in.Lights),
		Oil:           ok(in.Oil),
		Water:         ok(in.Water),
		Brake:         ok(in.Brake),
		Air:           ok(in.Air),
		Gas:           ok(in.Gas),
		Engine:        ok(in.Engine),
		TireCondition: ok(in.TireCondition),
	}
}

// NewReport builds an unsaved damage report. Its status is derived from the
// condition unless the input names one.
func NewReport(assignmentID string, tripID *string, in ConditionInput, at time.Time, actor string) models.DamageReport {
	r := models.DamageReport{
		DamageReportID:   ids.New(ids.DamageReport),
		BusAssignmentID:  assignmentID,
		BusTripID:        tripID,
		VehicleCondition: in.Condition(),
		Note:             in.Note,
		CheckDate:        at,
	}
	r.Status = r.DeriveStatus()
	if in.Status != nil {
		r.Status = *in.Status
	}
	r.Stamp(actor)
	return r
}

// damagedItems lists the failed checks by name, in checklist order.
func damagedItems(c models.VehicleCondition) []string {
	items := []struct {
		name string
		ok   bool
	}{
		{"Battery", c.Battery}, {"Lights", c.Lights}, {"Oil", c.Oil},
		{"Water", c.Water}, {"Brake", c.Brake}, {"Air", c.Air},
		{"Gas", c.Gas}, {"Engine", c.Engine}, {"Tire Condition", c.TireCondition},
	}
	var out []string
	for _, it := range items {
		if !it.ok {
			out = append(out, it.name)
		}
	}
	return out
}

func workTitle(c models.VehicleCondition) string {
	items := damagedItems(c)
	if len(items) == 0 {
		return "General inspection"
	}
	return "Repair: " + strings.Join(items, ", ")
}

// WorkPatch edits a maintenance work order. Status is derived from its
// tasks and cannot be set directly.
type WorkPatch struct {
	Priority    *models.Priority          `json:"Priority" binding:"omitempty,oneof=Low Medium High Critical"`
	WorkTitle   *string                   `json:"WorkTitle" binding:"omitempty,notblank"`
	WorkRemarks optional.Value[string]    `json:"WorkRemarks"`
	DueDate     optional.Value[time.Time] `json:"DueDate"`
}

func (p WorkPatch) Validate() error {
	return validation.Struct(p)
}

type ToolInput struct {
	ToolName string `json:"ToolName" binding:"notblank"`
	Quantity int    `json:"Quantity" binding:"gt=0"`
	Unit     string `json:"Unit"`
}

// TaskInput creates a task under a work order.
type TaskInput struct {
	TaskName      string             `json:"TaskName" binding:"notblank"`
	TaskType      string             `json:"TaskType"`
	TaskNote      *string            `json:"TaskNote"`
	Status        *models.WorkStatus `json:"Status" binding:"omitempty,oneof=Pending InProgress Completed"`
	AssigneeID    *string            `json:"AssigneeID"`
	HoursSpent    float64            `json:"HoursSpent" binding:"gte=0"`
	StartDate     *time.Time         `json:"StartDate"`
	CompletedDate *time.Time         `json:"CompletedDate"`
	Tools         []ToolInput        `json:"Tools" binding:"dive"`
}

func (in TaskInput) Validate() error {
	return validation.Struct(in)
}

// TaskPatch updates a task. A Tools list replaces the current one.
type TaskPatch struct {
	TaskName      *string                   `json:"TaskName" binding:"omitempty,notblank"`
	TaskType      *string                   `json:"TaskType"`
	TaskNote      optional.Value[string]    `json:"TaskNote"`
	Status        *models.WorkStatus        `json:"Status" binding:"omitempty,oneof=Pending InProgress Completed"`
	AssigneeID    optional.Value[string]    `json:"AssigneeID"`
	HoursSpent    *float64                  `json:"HoursSpent" binding:"omitempty,gte=0"`
	StartDate     optional.Value[time.Time] `json:"StartDate"`
	CompletedDate optional.Value[time.Time] `json:"CompletedDate"`
	Tools         *[]ToolInput              `json:"Tools" binding:"omitempty,dive"`
}

func (p TaskPatch) Validate() error {
	return validation.Struct(p)
}
