package models

import "time"

// DamageReport is a vehicle-condition snapshot taken after a trip or rental.
type DamageReport struct {
	DamageReportID   string  `json:"DamageReportID" gorm:"primaryKey;size:64"`
	BusAssignmentID  string  `json:"BusAssignmentID" gorm:"size:64;index"`
	BusTripID        *string `json:"BusTripID" gorm:"size:64;index"`
	VehicleCondition `gorm:"embedded"`
	Note             *string            `json:"Note"`
	CheckDate        time.Time          `json:"CheckDate"`
	Status           DamageReportStatus `json:"Status" gorm:"size:16;index"`
	Audit

	MaintenanceWork *MaintenanceWork `json:"MaintenanceWork,omitempty" gorm:"foreignKey:DamageReportID;references:DamageReportID;constraint:OnDelete:CASCADE"`
}

// DeriveStatus is NA when nothing is damaged and Pending otherwise.
func (d DamageReport) DeriveStatus() DamageReportStatus {
	if d.VehicleCondition.AllTrue() {
		return DamageNA
	}
	return DamagePending
}
