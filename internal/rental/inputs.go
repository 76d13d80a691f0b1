package rental

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fleetops/internal/apperr"
	"fleetops/internal/geo"
	"fleetops/internal/models"
	"fleetops/internal/validation"
)

// CreateRequestInput books a rental.
type CreateRequestInput struct {
	BusID           string          `json:"BusID" binding:"notblank"`
	CustomerName    string          `json:"CustomerName" binding:"notblank"`
	CustomerContact string          `json:"CustomerContact" binding:"notblank"`
	CustomerEmail   string          `json:"CustomerEmail"`
	PickupAddress   string          `json:"PickupAddress"`
	DropoffAddress  string          `json:"DropoffAddress"`
	PickupLat       float64         `json:"PickupLat"`
	PickupLng       float64         `json:"PickupLng"`
	DropoffLat      float64         `json:"DropoffLat"`
	DropoffLng      float64         `json:"DropoffLng"`
	RentalDate      time.Time       `json:"RentalDate" binding:"required"`
	Duration        int             `json:"Duration" binding:"gte=1"`
	PassengerCount  int             `json:"PassengerCount" binding:"gt=0"`
	RentalPrice     decimal.Decimal `json:"RentalPrice"`
	Note            *string         `json:"Note"`
	IDImageRef      *string         `json:"IDImageRef"`
}

// Validate checks the tags, then the price and both coordinate pairs.
func (in CreateRequestInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	switch {
	case in.RentalPrice.IsNegative():
		return apperr.ValidationError{Field: "RentalPrice", Msg: "cannot be negative"}
	case !in.pickup().Valid():
		return apperr.ValidationError{Field: "PickupLat", Msg: "pickup coordinates are out of range"}
	case !in.dropoff().Valid():
		return apperr.ValidationError{Field: "DropoffLat", Msg: "drop-off coordinates are out of range"}
	}
	return nil
}

func (in CreateRequestInput) pickup() geo.Point {
	return geo.Point{Lat: in.PickupLat, Lng: in.PickupLng}
}
func (in CreateRequestInput) dropoff() geo.Point {
	return geo.Point{Lat: in.DropoffLat, Lng: in.DropoffLng}
}

// ChecklistPatch edits the readiness checklist of an approved rental.
type ChecklistPatch struct {
	Battery       *bool `json:"Battery"`
	Lights        *bool `json:"Lights"`
	Oil           *bool `json:"Oil"`
	Water         *bool `json:"Water"`
	Brake         *bool `json:"Brake"`
	Air           *bool `json:"Air"`
	Gas           *bool `json:"Gas"`
	Engine        *bool `json:"Engine"`
	TireCondition *bool `json:"TireCondition"`
	SelfDriver    *bool `json:"Self_Driver"`
	SelfConductor *bool `json:"Self_Conductor"`
}

func (p ChecklistPatch) merge(c models.Checklist) models.Checklist {
	for dst, v := range map[*bool]*bool{
		&c.Battery: p.Battery, &c.Lights: p.Lights, &c.Oil: p.Oil,
		&c.Water: p.Water, &c.Brake: p.Brake, &c.Air: p.Air,
		&c.Gas: p.Gas, &c.Engine: p.Engine, &c.TireCondition: p.TireCondition,
		&c.SelfDriver: p.SelfDriver, &c.SelfConductor: p.SelfConductor,
	} {
		if v != nil {
			*dst = *v
		}
	}
	return c
}

// ImageURL turns a stored ID image reference into a resized CDN URL. It
// returns "" when either part is missing.
func ImageURL(base string, ref *string) string {
	if base == "" || ref == nil || *ref == "" {
		return ""
	}
	segments := strings.Split(strings.TrimLeft(*ref, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	q := url.Values{"width": {"800"}, "quality": {"75"}}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/") + "?" + q.Encode()
}
