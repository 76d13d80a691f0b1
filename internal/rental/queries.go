package rental

import (
	"context"

	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/models"
)

// ListRentalRequests returns requests newest first, optionally by status.
func (s *Service) ListRentalRequests(ctx context.Context, status string) ([]models.RentalRequest, error) {
	if status != "" && !models.RentalRequestStatus(status).Valid() {
		return nil, apperr.ValidationError{Field: "status", Msg: "must be one of Pending, Approved, Rejected, Completed"}
	}
	key := cache.NewKey(cache.EntityRentals, "status", status)
	return cache.ReadThrough(ctx, s.cache, key, func(ctx context.Context) ([]models.RentalRequest, error) {
		q := withAssignment(s.db.WithContext(ctx))
		if status != "" {
			q = q.Where("status = ?", status)
		}
		var out []models.RentalRequest
		if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
			return nil, apperr.FromDB("rental request", "", err)
		}
		for i := range out {
			out[i].IDImageURL = ImageURL(s.cfg.ImageBaseURL, out[i].IDImageRef)
		}
		return out, nil
	})
}

func (s *Service) GetRentalRequest(ctx context.Context, id string) (*models.RentalRequest, error) {
	var rr models.RentalRequest
	if err := withAssignment(s.db.WithContext(ctx)).First(&rr, "rental_request_id = ?", id).Error; err != nil {
		return nil, apperr.FromDB("rental request", id, err)
	}
	rr.IDImageURL = ImageURL(s.cfg.ImageBaseURL, rr.IDImageRef)
	return &rr, nil
}

func withAssignment(db *gorm.DB) *gorm.DB {
	return db.Preload("BusAssignment").
		Preload("BusAssignment.RentalBusAssignment").
		Preload("BusAssignment.RentalBusAssignment.RentalDrivers")
}
