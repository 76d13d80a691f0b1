package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalRequest is a customer booking bound 1:1 to a Rental BusAssignment.
type RentalRequest struct {
	RentalRequestID string              `json:"RentalRequestID" gorm:"primaryKey;size:64"`
	BusAssignmentID string              `json:"BusAssignmentID" gorm:"size:64;uniqueIndex"`
	CustomerName    string              `json:"CustomerName"`
	CustomerContact string              `json:"CustomerContact" gorm:"size:64"`
	CustomerEmail   string              `json:"CustomerEmail"`
	PickupAddress   string              `json:"PickupAddress"`
	DropoffAddress  string              `json:"DropoffAddress"`
	PickupLat       float64             `json:"PickupLat"`
	PickupLng       float64             `json:"PickupLng"`
	DropoffLat      float64             `json:"DropoffLat"`
	DropoffLng      float64             `json:"DropoffLng"`
	RentalDate      time.Time           `json:"RentalDate" gorm:"index"`
	Duration        int                 `json:"Duration"`
	PassengerCount  int                 `json:"PassengerCount"`
	RentalPrice     decimal.Decimal     `json:"RentalPrice" gorm:"type:numeric(12,2)"`
	Note            *string             `json:"Note"`
	IDImageRef      *string             `json:"IDImageRef"`
	Status          RentalRequestStatus `json:"Status" gorm:"size:16;index"`
	RejectionReason *string             `json:"RejectionReason"`
	ApprovedAt      *time.Time          `json:"ApprovedAt"`
	RejectedAt      *time.Time          `json:"RejectedAt"`
	CompletedAt     *time.Time          `json:"CompletedAt"`
	Audit

	BusAssignment *BusAssignment `json:"BusAssignment,omitempty" gorm:"foreignKey:BusAssignmentID;references:BusAssignmentID"`
	IDImageURL    string         `json:"IDImageURL,omitempty" gorm:"-"`
}

// RentalBusAssignment shares its identifier with the parent BusAssignment.
type RentalBusAssignment struct {
	RentalBusAssignmentID string `json:"RentalBusAssignmentID" gorm:"primaryKey;size:64"`
	Audit

	RentalDrivers []RentalDriver `json:"RentalDrivers,omitempty" gorm:"foreignKey:RentalBusAssignmentID;references:RentalBusAssignmentID;constraint:OnDelete:CASCADE"`
}

type RentalDriver struct {
	RentalDriverID        string `json:"RentalDriverID" gorm:"primaryKey;size:64"`
	RentalBusAssignmentID string `json:"RentalBusAssignmentID" gorm:"size:64;index"`
	DriverID              string `json:"DriverID" gorm:"size:64"`
	Audit
}
