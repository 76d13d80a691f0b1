package models

import "time"

// Audit is embedded in every table. CreatedBy/UpdatedBy carry the actor from
// the verified token.
type Audit struct {
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`
	CreatedBy string    `json:"CreatedBy" gorm:"size:100"`
	UpdatedBy string    `json:"UpdatedBy" gorm:"size:100"`
}

// Stamp sets both audit identities for a new row.
func (a *Audit) Stamp(actor string) {
	a.CreatedBy = actor
	a.UpdatedBy = actor
}
