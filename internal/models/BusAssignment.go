package models

// VehicleCondition is the set of physical checks shared by the readiness
// checklist and damage reports.
type VehicleCondition struct {
	Battery       bool `json:"Battery"`
	Lights        bool `json:"Lights"`
	Oil           bool `json:"Oil"`
	Water         bool `json:"Water"`
	Brake         bool `json:"Brake"`
	Air           bool `json:"Air"`
	Gas           bool `json:"Gas"`
	Engine        bool `json:"Engine"`
	TireCondition bool `json:"TireCondition"`
}

func (v VehicleCondition) AllTrue() bool {
	return v.Battery && v.Lights && v.Oil && v.Water && v.Brake &&
		v.Air && v.Gas && v.Engine && v.TireCondition
}

// Checklist is the eleven-flag readiness checklist of a bus assignment.
type Checklist struct {
	VehicleCondition
	SelfDriver    bool `json:"Self_Driver"`
	SelfConductor bool `json:"Self_Conductor"`
}

func (c Checklist) AllTrue() bool {
	return c.VehicleCondition.AllTrue() && c.SelfDriver && c.SelfConductor
}

// BusAssignment binds a physical bus to a route for one operational cycle.
// Regular and rental assignments extend it 1:1.
type BusAssignment struct {
	BusAssignmentID string         `json:"BusAssignmentID" gorm:"primaryKey;size:64"`
	BusID           string         `json:"BusID" gorm:"size:64;index"`
	RouteID         *string        `json:"RouteID" gorm:"size:64;index"`
	AssignmentType  AssignmentType `json:"AssignmentType" gorm:"size:16;index"`
	Checklist       `gorm:"embedded"`
	Status          BusOperationStatus `json:"Status" gorm:"size:16;index"`
	IsDeleted       bool               `json:"IsDeleted" gorm:"index"`
	Audit

	Route                *Route                `json:"Route,omitempty" gorm:"foreignKey:RouteID;references:RouteID"`
	RegularBusAssignment *RegularBusAssignment `json:"RegularBusAssignment,omitempty" gorm:"foreignKey:RegularBusAssignmentID;references:BusAssignmentID;constraint:OnDelete:CASCADE"`
	RentalBusAssignment  *RentalBusAssignment  `json:"RentalBusAssignment,omitempty" gorm:"foreignKey:RentalBusAssignmentID;references:BusAssignmentID;constraint:OnDelete:CASCADE"`
}

// RegularBusAssignment is the route-operating extension of a BusAssignment.
// It shares the parent's identifier.
type RegularBusAssignment struct {
	RegularBusAssignmentID string  `json:"RegularBusAssignmentID" gorm:"primaryKey;size:64"`
	DriverID               string  `json:"DriverID" gorm:"size:64;index"`
	ConductorID            string  `json:"ConductorID" gorm:"size:64;index"`
	LatestBusTripID        *string `json:"LatestBusTripID" gorm:"size:64"`
	Audit

	LatestBusTrip *BusTrip      `json:"LatestBusTrip,omitempty" gorm:"-"`
	QuotaPolicies []QuotaPolicy `json:"QuotaPolicies,omitempty" gorm:"foreignKey:RegularBusAssignmentID;references:RegularBusAssignmentID;constraint:OnDelete:CASCADE"`
}
