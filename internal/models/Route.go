package models

// Route is a service path; its stops are ordered by RouteStop.StopOrder.
// Geometry holds an optional LINESTRING as WKB.
type Route struct {
	RouteID     string `json:"RouteID" gorm:"primaryKey;size:64"`
	RouteName   string `json:"RouteName" gorm:"uniqueIndex"`
	Description string `json:"Description"`
	Geometry    []byte `json:"-"`
	IsDeleted   bool   `json:"IsDeleted" gorm:"index"`
	Audit

	RouteStops []RouteStop `json:"RouteStops,omitempty" gorm:"foreignKey:RouteID;references:RouteID;constraint:OnDelete:CASCADE"`
}

type RouteStop struct {
	RouteStopID string `json:"RouteStopID" gorm:"primaryKey;size:64"`
	RouteID     string `json:"RouteID" gorm:"size:64;index"`
	StopID      string `json:"StopID" gorm:"size:64;index"`
	StopOrder   int    `json:"StopOrder"`

	Stop *Stop `json:"Stop,omitempty" gorm:"foreignKey:StopID;references:StopID"`
}
