package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/models"
)

// Dashboard is the operations overview.
type Dashboard struct {
	AssignmentsByStatus map[string]int64 `json:"AssignmentsByStatus"`
	RentalsByStatus     map[string]int64 `json:"RentalsByStatus"`
	OpenWorksByPriority map[string]int64 `json:"OpenWorksByPriority"`
	TripsToday          int64            `json:"TripsToday"`
	SalesToday          decimal.Decimal  `json:"SalesToday"`
	GeneratedAt         time.Time        `json:"GeneratedAt"`
}

type countRow struct {
	GroupKey   string
	GroupCount int64
}

// Dashboard is read through the cache; every operations, rental and
// maintenance write invalidates it.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return cache.ReadThrough(ctx, s.cache, cache.NewKey(cache.EntityDashboard), s.loadDashboard)
}

func (s *Service) loadDashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	d := &Dashboard{GeneratedAt: now, SalesToday: decimal.Zero}

	var err error
	if d.AssignmentsByStatus, err = groupCount(db.Model(&models.BusAssignment{}).Where("is_deleted = ?", false), "status"); err != nil {
		return nil, err
	}
	if d.RentalsByStatus, err = groupCount(db.Model(&models.RentalRequest{}), "status"); err != nil {
		return nil, err
	}
	if d.OpenWorksByPriority, err = groupCount(db.Model(&models.MaintenanceWork{}).Where("status <> ?", models.WorkCompleted), "priority"); err != nil {
		return nil, err
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var trips []models.BusTrip
	if err := db.Select("bus_trip_id", "sales").
		Where("dispatched_at >= ? AND dispatched_at < ?", start, start.AddDate(0, 0, 1)).
		Find(&trips).Error; err != nil {
		return nil, apperr.FromDB("bus trip", "", err)
	}
	d.TripsToday = int64(len(trips))
	for _, t := range trips {
		if t.Sales.Valid {
			d.SalesToday = d.SalesToday.Add(t.Sales.Decimal)
		}
	}
	return d, nil
}

func groupCount(q *gorm.DB, column string) (map[string]int64, error) {
	var rows []countRow
	if err := q.Select(column + " AS group_key, COUNT(*) AS group_count").Group(column).Scan(&rows).Error; err != nil {
		return nil, apperr.FromDB(column, "", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.GroupCount
	}
	return out, nil
}
