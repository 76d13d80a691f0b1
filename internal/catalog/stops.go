package catalog

import (
	"context"
	"strings"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/geo"
	"fleetops/internal/ids"
	"fleetops/internal/models"
	"fleetops/internal/validation"
)

type StopInput struct {
	StopName  string  `json:"StopName" binding:"notblank"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

func (in StopInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !(geo.Point{Lat: in.Latitude, Lng: in.Longitude}).Valid() {
		return apperr.ValidationError{Field: "Latitude", Msg: "coordinates are out of range"}
	}
	return nil
}

type StopPatch struct {
	StopName  *string  `json:"StopName"`
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}

func (s *Service) CreateStop(ctx context.Context, in StopInput, actor string) (*models.Stop, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	stop := models.Stop{
		StopID:    ids.New(ids.Stop),
		StopName:  strings.TrimSpace(in.StopName),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	stop.Stamp(actor)
	if err := s.db.WithContext(ctx).Create(&stop).Error; err != nil {
		return nil, apperr.FromDB("stop", stop.StopID, err)
	}
	s.invalidate(ctx, cache.EntityStops)
	return &stop, nil
}

// UpdateStop validates the merged coordinates before writing.
func (s *Service) UpdateStop(ctx context.Context, id string, p StopPatch, actor string) (*models.Stop, error) {
	var stop models.Stop
	if err := s.db.WithContext(ctx).First(&stop, "stop_id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, apperr.FromDB("stop", id, err)
	}
	in := StopInput{StopName: stop.StopName, Latitude: stop.Latitude, Longitude: stop.Longitude}
	if p.StopName != nil {
		in.StopName = *p.StopName
	}
	if p.Latitude != nil {
		in.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		in.Longitude = *p.Longitude
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	stop.StopName = strings.TrimSpace(in.StopName)
	stop.Latitude, stop.Longitude = in.Latitude, in.Longitude
	stop.UpdatedBy = actor
	if err := s.db.WithContext(ctx).Save(&stop).Error; err != nil {
		return nil, apperr.FromDB("stop", id, err)
	}
	s.invalidate(ctx, cache.EntityStops, cache.EntityRoutes)
	return &stop, nil
}

// DeleteStop soft-deletes a stop. Routes keep their historical reference.
func (s *Service) DeleteStop(ctx context.Context, id, actor string) error {
	res := s.db.WithContext(ctx).Model(&models.Stop{}).Where("stop_id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_by": actor})
	if res.Error != nil {
		return apperr.FromDB("stop", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("stop", id)
	}
	s.invalidate(ctx, cache.EntityStops, cache.EntityRoutes)
	return nil
}

func (s *Service) ListStops(ctx context.Context) ([]models.Stop, error) {
	return cache.ReadThrough(ctx, s.cache, cache.NewKey(cache.EntityStops), func(ctx context.Context) ([]models.Stop, error) {
		var stops []models.Stop
		if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("stop_name").Find(&stops).Error; err != nil {
			return nil, apperr.FromDB("stop", "", err)
		}
		return stops, nil
	})
}
