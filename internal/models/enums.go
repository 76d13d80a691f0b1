package models

// BusOperationStatus is the lifecycle state of a BusAssignment.
type BusOperationStatus string

const (
	StatusNotReady    BusOperationStatus = "NotReady"
	StatusNotStarted  BusOperationStatus = "NotStarted"
	StatusInOperation BusOperationStatus = "InOperation"
	StatusCompleted   BusOperationStatus = "Completed"
)

func (s BusOperationStatus) Valid() bool {
	switch s {
	case StatusNotReady, StatusNotStarted, StatusInOperation, StatusCompleted:
		return true
	}
	return false
}

type AssignmentType string

const (
	AssignmentRegular AssignmentType = "Regular"
	AssignmentRental  AssignmentType = "Rental"
)

type PaymentMethod string

const (
	PaymentReimbursement PaymentMethod = "Reimbursement"
	PaymentCompanyCash   PaymentMethod = "Company_Cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentReimbursement || p == PaymentCompanyCash
}

type DamageReportStatus string

const (
	DamagePending  DamageReportStatus = "Pending"
	DamageAccepted DamageReportStatus = "Accepted"
	DamageRejected DamageReportStatus = "Rejected"
	DamageNA       DamageReportStatus = "NA"
)

func (s DamageReportStatus) Valid() bool {
	switch s {
	case DamagePending, DamageAccepted, DamageRejected, DamageNA:
		return true
	}
	return false
}

type RentalRequestStatus string

const (
	RentalPending   RentalRequestStatus = "Pending"
	RentalApproved  RentalRequestStatus = "Approved"
	RentalRejected  RentalRequestStatus = "Rejected"
	RentalCompleted RentalRequestStatus = "Completed"
)

func (s RentalRequestStatus) Valid() bool {
	switch s {
	case RentalPending, RentalApproved, RentalRejected, RentalCompleted:
		return true
	}
	return false
}

// WorkStatus is shared by maintenance works and their tasks.
type WorkStatus string

const (
	WorkPending    WorkStatus = "Pending"
	WorkInProgress WorkStatus = "InProgress"
	WorkCompleted  WorkStatus = "Completed"
)

func (s WorkStatus) Valid() bool {
	return s == WorkPending || s == WorkInProgress || s == WorkCompleted
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
