// Package maintenance files vehicle checks and damage reports and tracks the
// work orders that accepted reports spawn.
package maintenance

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/ids"
	"fleetops/internal/models"
)

type Service struct {
	db    *gorm.DB
	cache *cache.Cache
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, c *cache.Cache, opts ...Option) *Service {
	s := &Service{db: db, cache: c, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.EntityMaintenance, cache.EntityDashboard)
	}
}

// InsertReport saves a damage report inside tx. An Accepted report gets its
// work order in the same transaction.
func InsertReport(tx *gorm.DB, r *models.DamageReport, now time.Time) error {
	if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
		return apperr.FromDB("damage report", r.DamageReportID, err)
	}
	if r.Status != models.DamageAccepted {
		return nil
	}
	_, err := ensureWork(tx, r, now)
	return err
}

// CreateVehicleCheck files a damage report against a live assignment.
func (s *Service) CreateVehicleCheck(ctx context.Context, assignmentID string, in ConditionInput, actor string) (*models.DamageReport, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	var report models.DamageReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ba models.BusAssignment
		if err := tx.First(&ba, "bus_assignment_id = ? AND is_deleted = ?", assignmentID, false).Error; err != nil {
			return apperr.FromDB("bus assignment", assignmentID, err)
		}
		report = NewReport(assignmentID, nil, in, now, actor)
		return InsertReport(tx, &report, now)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"damage_report_id":  report.DamageReportID,
		"bus_assignment_id": assignmentID,
		"status":            report.Status,
	}).Info("CreateVehicleCheck: filed")
	s.invalidate(ctx)
	return s.GetDamageReport(ctx, report.DamageReportID)
}

// ReportFilter narrows ListDamageReports.
type ReportFilter struct {
	AssignmentID string
	Status       string
}

func (s *Service) ListDamageReports(ctx context.Context, f ReportFilter) ([]models.DamageReport, error) {
	q := s.db.WithContext(ctx).Preload("MaintenanceWork")
	if f.AssignmentID != "" {
		q = q.Where("bus_assignment_id = ?", f.AssignmentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []models.DamageReport
	if err := q.Order("check_date DESC").Find(&out).Error; err != nil {
		return nil, apperr.FromDB("damage report", "", err)
	}
	return out, nil
}

func (s *Service) GetDamageReport(ctx context.Context, id string) (*models.DamageReport, error) {
	var r models.DamageReport
	if err := s.db.WithContext(ctx).Preload("MaintenanceWork").First(&r, "damage_report_id = ?", id).Error; err != nil {
		return nil, apperr.FromDB("damage report", id, err)
	}
	return &r, nil
}

// UpdateDamageReportStatus records a review decision. Accepting spawns the
// report's single work order; accepting again returns the existing one.
func (s *Service) UpdateDamageReportStatus(ctx context.Context, id string, status models.DamageReportStatus, actor string) (*models.DamageReport, error) {
	if !status.Valid() {
		return nil, apperr.ValidationError{Field: "Status", Msg: "must be one of Pending, Accepted, Rejected, NA"}
	}
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.DamageReport
		if err := tx.Clauses(lockClause(tx)...).First(&r, "damage_report_id = ?", id).Error; err != nil {
			return apperr.FromDB("damage report", id, err)
		}
		r.Status = status
		r.UpdatedBy = actor
		if err := tx.Omit(clause.Associations).Save(&r).Error; err != nil {
			return apperr.FromDB("damage report", id, err)
		}
		if status != models.DamageAccepted {
			return nil
		}
		_, err := ensureWork(tx, &r, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.GetDamageReport(ctx, id)
}

// ensureWork returns the report's work order, creating it on first call.
func ensureWork(tx *gorm.DB, r *models.DamageReport, now time.Time) (*models.MaintenanceWork, error) {
	var existing []models.MaintenanceWork
	if err := tx.Where("damage_report_id = ?", r.DamageReportID).Limit(1).Find(&existing).Error; err != nil {
		return nil, apperr.FromDB("maintenance work", "", err)
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}
	w := models.MaintenanceWork{
		MaintenanceWorkID: ids.New(ids.MaintenanceWork),
		DamageReportID:    r.DamageReportID,
		Status:            models.WorkPending,
		Priority:          models.PriorityMedium,
		WorkTitle:         workTitle(r.VehicleCondition),
		WorkRemarks:       r.Note,
	}
	w.Stamp(r.UpdatedBy)
	if err := tx.Omit(clause.Associations).Create(&w).Error; err != nil {
		return nil, apperr.FromDB("maintenance work", w.MaintenanceWorkID, err)
	}
	logrus.WithFields(logrus.Fields{
		"maintenance_work_id": w.MaintenanceWorkID,
		"damage_report_id":    r.DamageReportID,
		"at":                  now,
	}).Info("ensureWork: work order opened")
	return &w, nil
}

func lockClause(tx *gorm.DB) []clause.Expression {
	if tx.Dialector.Name() == "postgres" {
		return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
	}
	return nil
}
