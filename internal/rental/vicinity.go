package rental

import (
	"fmt"

	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/geo"
	"fleetops/internal/models"
)

// Vicinity decides whether a pickup or drop-off point is serviceable: on
// land and within RadiusKM of some known stop.
type Vicinity struct {
	RadiusKM   float64
	WaterBoxes []geo.Box
}

// Check returns a rejection reason, or "" when both points pass. With no
// stops on file only the water check applies.
func (v Vicinity) Check(stops []geo.Point, points map[string]geo.Point) string {
	for _, label := range []string{"pickup", "drop-off"} {
		p, ok := points[label]
		if !ok {
			continue
		}
		if geo.InWater(p, v.WaterBoxes) {
			return fmt.Sprintf("The %s location appears to be on water.", label)
		}
		if d, ok := geo.NearestKM(p, stops); ok && v.RadiusKM > 0 && d > v.RadiusKM {
			return fmt.Sprintf("The %s location is %.1f km from the nearest stop; the service radius is %.0f km.", label, d, v.RadiusKM)
		}
	}
	return ""
}

func knownStops(tx *gorm.DB) ([]geo.Point, error) {
	var stops []models.Stop
	if err := tx.Where("is_deleted = ?", false).Find(&stops).Error; err != nil {
		return nil, apperr.FromDB("stop", "", err)
	}
	out := make([]geo.Point, len(stops))
	for i, s := range stops {
		out[i] = geo.Point{Lat: s.Latitude, Lng: s.Longitude}
	}
	return out, nil
}
