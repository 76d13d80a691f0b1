package models

import "time"

// MaintenanceWork is the work order spawned by an accepted damage report.
type MaintenanceWork struct {
	MaintenanceWorkID string     `json:"MaintenanceWorkID" gorm:"primaryKey;size:64"`
	DamageReportID    string     `json:"DamageReportID" gorm:"size:64;uniqueIndex"`
	Status            WorkStatus `json:"Status" gorm:"size:16;index"`
	Priority          Priority   `json:"Priority" gorm:"size:16;index"`
	WorkTitle         string     `json:"WorkTitle"`
	WorkRemarks       *string    `json:"WorkRemarks"`
	DueDate           *time.Time `json:"DueDate"`
	Audit

	Tasks        []Task        `json:"Tasks,omitempty" gorm:"foreignKey:MaintenanceWorkID;references:MaintenanceWorkID;constraint:OnDelete:CASCADE"`
	DamageReport *DamageReport `json:"DamageReport,omitempty" gorm:"-"`
}

type Task struct {
	TaskID            string     `json:"TaskID" gorm:"primaryKey;size:64"`
	MaintenanceWorkID string     `json:"MaintenanceWorkID" gorm:"size:64;index"`
	TaskName          string     `json:"TaskName"`
	TaskType          string     `json:"TaskType" gorm:"size:64"`
	TaskNote          *string    `json:"TaskNote"`
	Status            WorkStatus `json:"Status" gorm:"size:16"`
	AssigneeID        *string    `json:"AssigneeID" gorm:"size:64"`
	HoursSpent        float64    `json:"HoursSpent"`
	StartDate         *time.Time `json:"StartDate"`
	CompletedDate     *time.Time `json:"CompletedDate"`
	Audit

	Tools []TaskTool `json:"Tools,omitempty" gorm:"foreignKey:TaskID;references:TaskID;constraint:OnDelete:CASCADE"`
}

type TaskTool struct {
	TaskToolID string `json:"TaskToolID" gorm:"primaryKey;size:64"`
	TaskID     string `json:"TaskID" gorm:"size:64;index"`
	ToolName   string `json:"ToolName"`
	Quantity   int    `json:"Quantity"`
	Unit       string `json:"Unit" gorm:"size:32"`
}
