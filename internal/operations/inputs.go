package operations

import (
	"time"

	"github.com/shopspring/decimal"

	"fleetops/internal/apperr"
	"fleetops/internal/models"
	"fleetops/internal/optional"
	"fleetops/internal/quota"
	"fleetops/internal/validation"
)

// AssignmentPatch is the body accepted by UpdateAssignment. Pointer fields
// are optional; optional.Value fields also distinguish an explicit null.
type AssignmentPatch struct {
	Battery       *bool `json:"Battery"`
	Lights        *bool `json:"Lights"`
	Oil           *bool `json:"Oil"`
	Water         *bool `json:"Water"`
	Brake         *bool `json:"Brake"`
	Air           *bool `json:"Air"`
	Gas           *bool `json:"Gas"`
	Engine        *bool `json:"Engine"`
	TireCondition *bool `json:"TireCondition"`
	SelfDriver    *bool `json:"Self_Driver"`
	SelfConductor *bool `json:"Self_Conductor"`

	Status      *models.BusOperationStatus `json:"Status" binding:"omitempty,oneof=NotStarted NotReady InOperation Completed"`
	RouteID     *string                    `json:"RouteID"`
	DriverID    *string                    `json:"DriverID"`
	ConductorID *string                    `json:"ConductorID"`

	LatestBusTripID *string                              `json:"LatestBusTripID"`
	DispatchedAt    optional.Value[time.Time]            `json:"DispatchedAt"`
	CompletedAt     optional.Value[time.Time]            `json:"CompletedAt"`
	Sales           optional.Value[decimal.Decimal]      `json:"Sales"`
	PettyCash       optional.Value[decimal.Decimal]      `json:"PettyCash"`
	TripExpense     optional.Value[decimal.Decimal]      `json:"TripExpense"`
	PaymentMethod   optional.Value[models.PaymentMethod] `json:"Payment_Method"`
	Remarks         optional.Value[string]               `json:"Remarks"`
	TicketBusTrips  *[]TicketAllocation                  `json:"TicketBusTrips"`

	ResetCompleted bool `json:"ResetCompleted"`
	DamageFields
}

// DamageFields are the D_-prefixed damage flags read when a cycle is reset.
type DamageFields struct {
	DBattery       *bool                      `json:"D_Battery"`
	DLights        *bool                      `json:"D_Lights"`
	DOil           *bool                      `json:"D_Oil"`
	DWater         *bool                      `json:"D_Water"`
	DBrake         *bool                      `json:"D_Brake"`
	DAir           *bool                      `json:"D_Air"`
	DGas           *bool                      `json:"D_Gas"`
	DEngine        *bool                      `json:"D_Engine"`
	DTireCondition *bool                      `json:"D_TireCondition"`
	DNote          *string                    `json:"D_Note"`
	DStatus        *models.DamageReportStatus `json:"D_Status" binding:"omitempty,oneof=Pending Accepted Rejected NA"`
}

// Condition builds the reported vehicle condition. An absent flag means the
// item was found in order, the same default the vehicle-check endpoint uses.
func (d DamageFields) Condition() models.VehicleCondition {
	return models.VehicleCondition{
		Battery:       boolOr(d.DBattery, true),
		Lights:        boolOr(d.DLights, true),
		Oil:           boolOr(d.DOil, true),
		Water:         boolOr(d.DWater, true),
		Brake:         boolOr(d.DBrake, true),
		Air:           boolOr(d.DAir, true),
		Gas:           boolOr(d.DGas, true),
		Engine:        boolOr(d.DEngine, true),
		TireCondition: boolOr(d.DTireCondition, true),
	}
}

// TicketAllocation is one ticket-type range supplied with a trip update.
type TicketAllocation struct {
	TicketTypeID     string `json:"TicketTypeID" binding:"required"`
	StartingIDNumber int    `json:"StartingIDNumber"`
	EndingIDNumber   int    `json:"EndingIDNumber"`
	OverallEndingID  int    `json:"OverallEndingID"`
}

const ticketRangeMsg = "EndingIDNumber must be between StartingIDNumber and OverallEndingID."

// ValidateAllocations checks every range before anything is written.
func ValidateAllocations(allocs []TicketAllocation) error {
	for _, a := range allocs {
		if err := validation.Struct(a); err != nil {
			return err
		}
		if a.StartingIDNumber > a.EndingIDNumber || a.EndingIDNumber > a.OverallEndingID {
			return apperr.Validation(ticketRangeMsg)
		}
	}
	return nil
}

// Validate checks the tagged enums, then the nullable fields and ticket
// ranges the tags cannot express.
func (p AssignmentPatch) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.PaymentMethod.Ptr != nil && !p.PaymentMethod.Ptr.Valid() {
		return apperr.ValidationError{Field: "Payment_Method", Msg: "must be Reimbursement or Company_Cash"}
	}
	if p.DispatchedAt.IsNull() {
		return apperr.ValidationError{Field: "DispatchedAt", Msg: "cannot be null"}
	}
	for _, v := range []optional.Value[decimal.Decimal]{p.Sales, p.PettyCash, p.TripExpense} {
		if v.Ptr != nil && v.Ptr.IsNegative() {
			return apperr.Validation("Sales, PettyCash and TripExpense cannot be negative")
		}
	}
	if p.TicketBusTrips != nil {
		return ValidateAllocations(*p.TicketBusTrips)
	}
	return nil
}

// hasTripFields reports whether the patch writes to the latest trip.
func (p AssignmentPatch) hasTripFields() bool {
	return p.DispatchedAt.Set || p.Sales.Set || p.PettyCash.Set || p.CompletedAt.Set ||
		p.Remarks.Set || p.TripExpense.Set || p.PaymentMethod.Set
}

// createsTrip reports whether a new trip should be opened when none exists.
// A ticket list counts too: tickets are issued against a trip before dispatch.
func (p AssignmentPatch) createsTrip() bool {
	return p.hasTripFields() || p.TicketBusTrips != nil
}

// mergeChecklist overlays the patch flags on the current checklist.
func (p AssignmentPatch) mergeChecklist(c models.Checklist) models.Checklist {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Battery, p.Battery)
	set(&c.Lights, p.Lights)
	set(&c.Oil, p.Oil)
	set(&c.Water, p.Water)
	set(&c.Brake, p.Brake)
	set(&c.Air, p.Air)
	set(&c.Gas, p.Gas)
	set(&c.Engine, p.Engine)
	set(&c.TireCondition, p.TireCondition)
	set(&c.SelfDriver, p.SelfDriver)
	set(&c.SelfConductor, p.SelfConductor)
	return c
}

// CreateAssignmentInput opens a new regular assignment.
type CreateAssignmentInput struct {
	BusID         string             `json:"BusID" binding:"required"`
	RouteID       string             `json:"RouteID" binding:"required"`
	DriverID      string             `json:"DriverID" binding:"required"`
	ConductorID   string             `json:"ConductorID" binding:"required"`
	QuotaPolicies []QuotaPolicyInput `json:"QuotaPolicies" binding:"dive"`
}

func (in CreateAssignmentInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.DriverID == in.ConductorID {
		return apperr.Validation("driver and conductor must be different employees")
	}
	for _, qp := range in.QuotaPolicies {
		if err := qp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// QuotaPolicyInput creates or replaces a quota policy.
type QuotaPolicyInput struct {
	StartDate  time.Time       `json:"StartDate" binding:"required"`
	EndDate    time.Time       `json:"EndDate" binding:"required"`
	QuotaType  string          `json:"QuotaType" binding:"required,oneof=Fixed Percentage"`
	QuotaValue decimal.Decimal `json:"QuotaValue"`
}

// Validate checks the tags, then the value range for the quota type and
// the window.
func (in QuotaPolicyInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	switch in.QuotaType {
	case "Fixed":
		if in.QuotaValue.IsNegative() {
			return apperr.ValidationError{Field: "QuotaValue", Msg: "fixed quota cannot be negative"}
		}
	case "Percentage":
		if !in.QuotaValue.IsPositive() || in.QuotaValue.GreaterThan(decimal.NewFromInt(1)) {
			return apperr.ValidationError{Field: "QuotaValue", Msg: "percentage must be a fraction in (0, 1]"}
		}
	}
	return quota.ValidateWindow(quota.Window{Start: in.StartDate, End: in.EndDate})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
