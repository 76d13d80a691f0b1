package operations

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/models"
)

// TripFilter narrows ListTrips. Nil pointers and zero times are ignored.
type TripFilter struct {
	AssignmentID      string
	IsRevenueRecorded *bool
	IsExpenseRecorded *bool
	DispatchedFrom    time.Time
	DispatchedTo      time.Time
	CompletedOnly     bool
}

func (f TripFilter) key() cache.Key {
	return cache.NewKey(cache.EntityTrips,
		"assignment", f.AssignmentID,
		"revenue", boolParam(f.IsRevenueRecorded),
		"expense", boolParam(f.IsExpenseRecorded),
		"from", timeParam(f.DispatchedFrom),
		"to", timeParam(f.DispatchedTo),
		"completed", strconv.FormatBool(f.CompletedOnly),
	)
}

// ListTrips returns trips with their ticket allocations, newest dispatch first.
func (s *Service) ListTrips(ctx context.Context, f TripFilter) ([]models.BusTrip, error) {
	return cache.ReadThrough(ctx, s.cache, f.key(), func(ctx context.Context) ([]models.BusTrip, error) {
		q := s.db.WithContext(ctx).Preload("TicketBusTrips").Preload("TicketBusTrips.TicketType")
		if f.AssignmentID != "" {
			q = q.Where("regular_bus_assignment_id = ?", f.AssignmentID)
		}
		if f.IsRevenueRecorded != nil {
			q = q.Where("is_revenue_recorded = ?", *f.IsRevenueRecorded)
		}
		if f.IsExpenseRecorded != nil {
			q = q.Where("is_expense_recorded = ?", *f.IsExpenseRecorded)
		}
		if !f.DispatchedFrom.IsZero() {
			q = q.Where("dispatched_at >= ?", f.DispatchedFrom.UTC())
		}
		if !f.DispatchedTo.IsZero() {
			q = q.Where("dispatched_at <= ?", f.DispatchedTo.UTC())
		}
		if f.CompletedOnly {
			q = q.Where("completed_at IS NOT NULL")
		}
		var trips []models.BusTrip
		if err := q.Order("dispatched_at DESC").Order("bus_trip_id").Find(&trips).Error; err != nil {
			return nil, apperr.FromDB("bus trip", "", err)
		}
		return trips, nil
	})
}

func (s *Service) GetTrip(ctx context.Context, id string) (*models.BusTrip, error) {
	var trip models.BusTrip
	err := s.db.WithContext(ctx).Preload("TicketBusTrips").Preload("TicketBusTrips.TicketType").
		First(&trip, "bus_trip_id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB("bus trip", id, err)
	}
	return &trip, nil
}

// TripFlagUpdate sets the bookkeeping flags of one trip.
type TripFlagUpdate struct {
	BusTripID         string `json:"BusTripID"`
	IsRevenueRecorded *bool  `json:"IsRevenueRecorded"`
	IsExpenseRecorded *bool  `json:"IsExpenseRecorded"`
}

type FailedUpdate struct {
	BusTripID string `json:"BusTripID"`
	Error     string `json:"error"`
}

// BulkResult reports a bulk update item by item.
type BulkResult struct {
	Updated []string       `json:"updated"`
	Failed  []FailedUpdate `json:"failed"`
}

// UpdateTripFlags applies each item as its own write. A failed item is
// reported and does not undo the others.
func (s *Service) UpdateTripFlags(ctx context.Context, items []TripFlagUpdate, actor string) (BulkResult, error) {
	res := BulkResult{Updated: []string{}, Failed: []FailedUpdate{}}
	if len(items) == 0 {
		return res, apperr.Validation("at least one trip is required")
	}
	for _, it := range items {
		if err := s.updateTripFlags(ctx, it, actor); err != nil {
			logrus.WithError(err).WithField("bus_trip_id", it.BusTripID).Warn("UpdateTripFlags: item failed")
			res.Failed = append(res.Failed, FailedUpdate{BusTripID: it.BusTripID, Error: err.Error()})
			continue
		}
		res.Updated = append(res.Updated, it.BusTripID)
	}
	if len(res.Updated) > 0 {
		s.afterCommit(ctx, "", "", "")
	}
	return res, nil
}

func (s *Service) updateTripFlags(ctx context.Context, it TripFlagUpdate, actor string) error {
	if it.BusTripID == "" {
		return apperr.ValidationError{Field: "BusTripID", Msg: "is required"}
	}
	if it.IsRevenueRecorded == nil && it.IsExpenseRecorded == nil {
		return apperr.Validation("nothing to update")
	}
	updates := map[string]interface{}{"updated_by": actor}
	if it.IsRevenueRecorded != nil {
		updates["is_revenue_recorded"] = *it.IsRevenueRecorded
	}
	if it.IsExpenseRecorded != nil {
		updates["is_expense_recorded"] = *it.IsExpenseRecorded
	}
	res := s.db.WithContext(ctx).Model(&models.BusTrip{}).Where("bus_trip_id = ?", it.BusTripID).Updates(updates)
	if res.Error != nil {
		return apperr.FromDB("bus trip", it.BusTripID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("bus trip", it.BusTripID)
	}
	return nil
}

func boolParam(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func timeParam(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
