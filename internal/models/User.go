package models

// User is a back-office operator account. Role is "admin" or "operator".
type User struct {
	UserID   string `json:"UserID" gorm:"primaryKey;size:64"`
	Username string `json:"Username" gorm:"uniqueIndex;size:100"`
	Password string `json:"-"`
	Role     string `json:"Role" gorm:"size:32"`
	Audit
}

// BootstrapFirstAdmin keys the Bootstrap row claimed by the anonymous
// first-admin signup.
const BootstrapFirstAdmin = "first-admin"

// Bootstrap records one-time setup steps. Its primary key makes each step
// claimable by exactly one transaction.
type Bootstrap struct {
	Key    string `json:"Key" gorm:"primaryKey;size:32"`
	UserID string `json:"UserID" gorm:"size:64"`
	Audit
}
