package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusTrip is one dispatch cycle of a regular assignment.
type BusTrip struct {
	BusTripID              string              `json:"BusTripID" gorm:"primaryKey;size:64"`
	RegularBusAssignmentID string              `json:"RegularBusAssignmentID" gorm:"size:64;index"`
	DispatchedAt           *time.Time          `json:"DispatchedAt" gorm:"index"`
	CompletedAt            *time.Time          `json:"CompletedAt"`
	Sales                  decimal.NullDecimal `json:"Sales" gorm:"type:numeric(12,2)"`
	PettyCash              decimal.NullDecimal `json:"PettyCash" gorm:"type:numeric(12,2)"`
	TripExpense            decimal.NullDecimal `json:"TripExpense" gorm:"type:numeric(12,2)"`
	PaymentMethod          *PaymentMethod      `json:"Payment_Method" gorm:"size:32"`
	Remarks                *string             `json:"Remarks"`
	IsRevenueRecorded      bool                `json:"IsRevenueRecorded"`
	IsExpenseRecorded      bool                `json:"IsExpenseRecorded"`
	Audit

	TicketBusTrips []TicketBusTrip `json:"TicketBusTrips,omitempty" gorm:"foreignKey:BusTripID;references:BusTripID;constraint:OnDelete:CASCADE"`
}

// TicketBusTrip allocates a serial range of one ticket type to a trip.
// StartingIDNumber <= EndingIDNumber <= OverallEndingID.
type TicketBusTrip struct {
	TicketBusTripID  string `json:"TicketBusTripID" gorm:"primaryKey;size:64"`
	BusTripID        string `json:"BusTripID" gorm:"size:64;index"`
	TicketTypeID     string `json:"TicketTypeID" gorm:"size:64;index"`
	StartingIDNumber int    `json:"StartingIDNumber"`
	EndingIDNumber   int    `json:"EndingIDNumber"`
	OverallEndingID  int    `json:"OverallEndingID"`
	Audit

	TicketType *TicketType `json:"TicketType,omitempty" gorm:"foreignKey:TicketTypeID;references:TicketTypeID"`
}

type TicketType struct {
	TicketTypeID string          `json:"TicketTypeID" gorm:"primaryKey;size:64"`
	Value        decimal.Decimal `json:"Value" gorm:"type:numeric(12,2)"`
	Audit
}
