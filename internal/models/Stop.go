package models

// Stop is a pickup or drop-off location that routes pass through.
type Stop struct {
	StopID    string  `json:"StopID" gorm:"primaryKey;size:64"`
	StopName  string  `json:"StopName"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	IsDeleted bool    `json:"IsDeleted" gorm:"index"`
	Audit
}
