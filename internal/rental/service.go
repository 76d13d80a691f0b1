// Package rental runs customer bus rentals from booking to return. Every
// command is gated on the pair of rental request status and bus assignment
// status.
package rental

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/feed"
	"fleetops/internal/geo"
	"fleetops/internal/ids"
	"fleetops/internal/maintenance"
	"fleetops/internal/models"
)

// RequiredDrivers is how many drivers an approved rental needs before it can
// leave NotReady.
const RequiredDrivers = 2

type Config struct {
	Vicinity     Vicinity
	ImageBaseURL string
}

type Service struct {
	db    *gorm.DB
	cache *cache.Cache
	feed  feed.Publisher
	cfg   Config
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, c *cache.Cache, pub feed.Publisher, cfg Config, opts ...Option) *Service {
	s := &Service{db: db, cache: c, feed: pub, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// state is a rental request together with its locked assignment.
type state struct {
	rr *models.RentalRequest
	ba *models.BusAssignment
}

func (st state) is(rs models.RentalRequestStatus, bs ...models.BusOperationStatus) bool {
	if st.rr.Status != rs {
		return false
	}
	if len(bs) == 0 {
		return true
	}
	for _, b := range bs {
		if st.ba.Status == b {
			return true
		}
	}
	return false
}

func (st state) refuse(command string) error {
	return apperr.Precondition(fmt.Sprintf("cannot %s a rental that is %s with bus status %s",
		command, st.rr.Status, st.ba.Status))
}

// CreateRentalRequest books a rental on a new Rental assignment. A request
// failing the vicinity check is stored as Rejected with the reason.
func (s *Service) CreateRentalRequest(ctx context.Context, in CreateRequestInput, actor string) (*models.RentalRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	rr := models.RentalRequest{
		RentalRequestID: ids.New(ids.RentalRequest),
		BusAssignmentID: ids.New(ids.BusAssignment),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerContact: in.CustomerContact,
		CustomerEmail:   in.CustomerEmail,
		PickupAddress:   in.PickupAddress,
		DropoffAddress:  in.DropoffAddress,
		PickupLat:       in.PickupLat,
		PickupLng:       in.PickupLng,
		DropoffLat:      in.DropoffLat,
		DropoffLng:      in.DropoffLng,
		RentalDate:      in.RentalDate.UTC(),
		Duration:        in.Duration,
		PassengerCount:  in.PassengerCount,
		RentalPrice:     in.RentalPrice,
		Note:            in.Note,
		IDImageRef:      in.IDImageRef,
		Status:          models.RentalPending,
	}
	rr.Stamp(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stops, err := knownStops(tx)
		if err != nil {
			return err
		}
		reason := s.cfg.Vicinity.Check(stops, map[string]geo.Point{"pickup": in.pickup(), "drop-off": in.dropoff()})
		if reason != "" {
			rr.Status = models.RentalRejected
			rr.RejectionReason = &reason
			rr.RejectedAt = &now
		}

		ba := models.BusAssignment{
			BusAssignmentID: rr.BusAssignmentID,
			BusID:           in.BusID,
			AssignmentType:  models.AssignmentRental,
			Status:          models.StatusNotReady,
		}
		ba.Stamp(actor)
		if err := tx.Omit(clause.Associations).Create(&ba).Error; err != nil {
			return apperr.FromDB("bus assignment", ba.BusAssignmentID, err)
		}
		rba := models.RentalBusAssignment{RentalBusAssignmentID: ba.BusAssignmentID}
		rba.Stamp(actor)
		if err := tx.Omit(clause.Associations).Create(&rba).Error; err != nil {
			return apperr.FromDB("rental bus assignment", ba.BusAssignmentID, err)
		}
		return apperr.FromDB("rental request", rr.RentalRequestID, tx.Omit(clause.Associations).Create(&rr).Error)
	})
	if err != nil {
		return nil, err
	}
	if rr.Status == models.RentalRejected {
		logrus.WithFields(logrus.Fields{
			"rental_request_id": rr.RentalRequestID,
			"reason":            *rr.RejectionReason,
		}).Info("CreateRentalRequest: auto-rejected")
	}
	s.afterCommit(ctx, "rental.created", rr.BusAssignmentID, rr.Status)
	return s.GetRentalRequest(ctx, rr.RentalRequestID)
}

// Approve accepts a Pending request. The bus must then be made ready.
func (s *Service) Approve(ctx context.Context, id, actor string) (*models.RentalRequest, error) {
	return s.command(ctx, id, actor, "rental.approved", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalPending) {
			return st.refuse("approve")
		}
		st.rr.Status = models.RentalApproved
		st.rr.ApprovedAt = &now
		st.ba.Status = models.StatusNotReady
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, id, reason, actor string) (*models.RentalRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.ValidationError{Field: "RejectionReason", Msg: "is required"}
	}
	return s.command(ctx, id, actor, "rental.rejected", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalPending) {
			return st.refuse("reject")
		}
		st.rr.Status = models.RentalRejected
		st.rr.RejectionReason = &reason
		st.rr.RejectedAt = &now
		return nil
	})
}

// AssignDrivers replaces the rental's drivers. Exactly two distinct drivers
// are required.
func (s *Service) AssignDrivers(ctx context.Context, id string, driverIDs []string, actor string) (*models.RentalRequest, error) {
	seen := map[string]bool{}
	for _, d := range driverIDs {
		if strings.TrimSpace(d) == "" || seen[d] {
			return nil, apperr.ValidationError{Field: "DriverIDs", Msg: "must be distinct, non-empty driver ids"}
		}
		seen[d] = true
	}
	if len(driverIDs) != RequiredDrivers {
		return nil, apperr.ValidationError{Field: "DriverIDs", Msg: fmt.Sprintf("exactly %d drivers are required", RequiredDrivers)}
	}
	return s.command(ctx, id, actor, "rental.drivers_assigned", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalApproved, models.StatusNotReady) {
			return st.refuse("assign drivers to")
		}
		if err := tx.Where("rental_bus_assignment_id = ?", st.ba.BusAssignmentID).Delete(&models.RentalDriver{}).Error; err != nil {
			return apperr.FromDB("rental driver", "", err)
		}
		for _, d := range driverIDs {
			row := models.RentalDriver{
				RentalDriverID:        ids.New(ids.RentalDriver),
				RentalBusAssignmentID: st.ba.BusAssignmentID,
				DriverID:              d,
			}
			row.Stamp(actor)
			if err := tx.Create(&row).Error; err != nil {
				return apperr.FromDB("rental driver", row.RentalDriverID, err)
			}
		}
		return promoteIfReady(tx, st)
	})
}

// UpdateChecklist merges checklist flags on an approved rental that is not
// yet ready.
func (s *Service) UpdateChecklist(ctx context.Context, id string, p ChecklistPatch, actor string) (*models.RentalRequest, error) {
	return s.command(ctx, id, actor, "rental.checklist_updated", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalApproved, models.StatusNotReady) {
			return st.refuse("edit the checklist of")
		}
		st.ba.Checklist = p.merge(st.ba.Checklist)
		return promoteIfReady(tx, st)
	})
}

// ToInOperation sends a ready rental bus out.
func (s *Service) ToInOperation(ctx context.Context, id, actor string) (*models.RentalRequest, error) {
	return s.command(ctx, id, actor, "rental.in_operation", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalApproved, models.StatusNotStarted) {
			return st.refuse("start")
		}
		st.ba.Status = models.StatusInOperation
		return nil
	})
}

// Complete closes a rental in operation, optionally filing a damage report.
func (s *Service) Complete(ctx context.Context, id string, damage *maintenance.ConditionInput, actor string) (*models.RentalRequest, error) {
	if damage != nil {
		if err := damage.Validate(); err != nil {
			return nil, err
		}
	}
	return s.command(ctx, id, actor, "rental.completed", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalApproved, models.StatusInOperation) {
			return st.refuse("complete")
		}
		st.rr.Status = models.RentalCompleted
		st.rr.CompletedAt = &now
		st.ba.Status = models.StatusCompleted
		if damage == nil {
			return nil
		}
		report := maintenance.NewReport(st.ba.BusAssignmentID, nil, *damage, now, actor)
		return maintenance.InsertReport(tx, &report, now)
	})
}

// AddDamageReport appends a report to a completed rental.
func (s *Service) AddDamageReport(ctx context.Context, id string, damage maintenance.ConditionInput, actor string) (*models.DamageReport, error) {
	if err := damage.Validate(); err != nil {
		return nil, err
	}
	var report models.DamageReport
	_, err := s.command(ctx, id, actor, "rental.damage_reported", func(tx *gorm.DB, st state, now time.Time) error {
		if !st.is(models.RentalCompleted) {
			return st.refuse("report damage on")
		}
		report = maintenance.NewReport(st.ba.BusAssignmentID, nil, damage, now, actor)
		return maintenance.InsertReport(tx, &report, now)
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.EntityMaintenance)
	}
	return &report, nil
}

// promoteIfReady moves the assignment to NotStarted once the checklist is
// complete and exactly two drivers are assigned.
func promoteIfReady(tx *gorm.DB, st state) error {
	if !st.ba.Checklist.AllTrue() {
		return nil
	}
	var n int64
	if err := tx.Model(&models.RentalDriver{}).Where("rental_bus_assignment_id = ?", st.ba.BusAssignmentID).Count(&n).Error; err != nil {
		return apperr.FromDB("rental driver", "", err)
	}
	if n == RequiredDrivers {
		st.ba.Status = models.StatusNotStarted
	}
	return nil
}

// command locks the request and its assignment, runs fn and saves both.
func (s *Service) command(ctx context.Context, id, actor, event string, fn func(*gorm.DB, state, time.Time) error) (*models.RentalRequest, error) {
	now := s.now()
	var st state
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rr models.RentalRequest
		if err := lock(tx).First(&rr, "rental_request_id = ?", id).Error; err != nil {
			return apperr.FromDB("rental request", id, err)
		}
		var ba models.BusAssignment
		if err := lock(tx).First(&ba, "bus_assignment_id = ? AND is_deleted = ?", rr.BusAssignmentID, false).Error; err != nil {
			return apperr.FromDB("bus assignment", rr.BusAssignmentID, err)
		}
		st = state{rr: &rr, ba: &ba}
		if err := fn(tx, st, now); err != nil {
			return err
		}
		rr.UpdatedBy, ba.UpdatedBy = actor, actor
		if err := tx.Omit(clause.Associations).Save(&ba).Error; err != nil {
			return apperr.FromDB("bus assignment", ba.BusAssignmentID, err)
		}
		return apperr.FromDB("rental request", id, tx.Omit(clause.Associations).Save(&rr).Error)
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"rental_request_id": id, "event": event}).Info("rental command rejected")
		return nil, err
	}
	s.afterCommit(ctx, event, st.ba.BusAssignmentID, st.rr.Status)
	return s.GetRentalRequest(ctx, id)
}

func (s *Service) afterCommit(ctx context.Context, event, assignmentID string, status models.RentalRequestStatus) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.EntityRentals, cache.EntityAssignments, cache.EntityMaintenance, cache.EntityDashboard)
	}
	if s.feed != nil {
		s.feed.Publish(feed.Event{
			Topic:           feed.TopicRentals,
			Type:            event,
			BusAssignmentID: assignmentID,
			Status:          string(status),
			At:              s.now(),
		})
	}
}

func lock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
