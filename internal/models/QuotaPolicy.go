package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotaPolicy is a revenue-sharing rule active over [StartDate, EndDate].
// Exactly one of Fixed or Percentage is set.
type QuotaPolicy struct {
	QuotaPolicyID          string    `json:"QuotaPolicyID" gorm:"primaryKey;size:64"`
	RegularBusAssignmentID string    `json:"RegularBusAssignmentID" gorm:"size:64;index"`
	StartDate              time.Time `json:"StartDate" gorm:"index"`
	EndDate                time.Time `json:"EndDate" gorm:"index"`
	Audit

	Fixed      *FixedQuota      `json:"Fixed,omitempty" gorm:"foreignKey:FQuotaPolicyID;references:QuotaPolicyID;constraint:OnDelete:CASCADE"`
	Percentage *PercentageQuota `json:"Percentage,omitempty" gorm:"foreignKey:PQuotaPolicyID;references:QuotaPolicyID;constraint:OnDelete:CASCADE"`
}

type FixedQuota struct {
	FQuotaPolicyID string          `json:"FQuotaPolicyID" gorm:"primaryKey;size:64"`
	Quota          decimal.Decimal `json:"Quota" gorm:"type:numeric(12,2)"`
}

// PercentageQuota holds the company share as a fraction of sales (0.25 = 25%).
type PercentageQuota struct {
	PQuotaPolicyID string          `json:"PQuotaPolicyID" gorm:"primaryKey;size:64"`
	Percentage     decimal.Decimal `json:"Percentage" gorm:"type:numeric(6,4)"`
}
