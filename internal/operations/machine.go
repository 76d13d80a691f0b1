package operations

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/ids"
	"fleetops/internal/maintenance"
	"fleetops/internal/models"
	"fleetops/internal/quota"
)

const noPolicyMsg = "Cannot dispatch: No active QuotaPolicy for the selected DispatchedAt date/time."

// UpdateAssignment is the single write path of a regular assignment. In one
// transaction it merges the checklist, enforces the readiness and dispatch
// gates, writes the latest trip and its tickets, and optionally closes the
// cycle. Nothing is persisted when any step fails.
func (s *Service) UpdateAssignment(ctx context.Context, id string, patch AssignmentPatch, actor string) (*AssignmentView, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	now := s.now()

	var status models.BusOperationStatus
	filed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ba, reg, err := lockAssignment(tx, id)
		if err != nil {
			return err
		}
		if ba.AssignmentType != models.AssignmentRegular {
			return apperr.Precondition("rental assignments are managed through the rental workflow")
		}
		if reg == nil {
			if patch.createsTrip() || patch.LatestBusTripID != nil {
				return apperr.Precondition("assignment has no regular assignment to record trips against")
			}
		}

		checklist := patch.mergeChecklist(ba.Checklist)
		requested := ba.Status
		if patch.Status != nil {
			requested = *patch.Status
		}

		if requested == models.StatusInOperation && !patch.ResetCompleted {
			if err := s.dispatchGate(tx, ba, reg, &patch, now); err != nil {
				return err
			}
		}

		final := requested
		if (final == models.StatusNotStarted || final == models.StatusInOperation) && !checklist.AllTrue() {
			final = models.StatusNotReady
		}

		if err := s.applyAssignmentFields(tx, ba, reg, patch, checklist, final, actor); err != nil {
			return err
		}

		if reg != nil {
			trip, err := ensureTrip(tx, reg, patch, actor)
			if err != nil {
				return err
			}
			if trip == nil && patch.hasTripFields() {
				return apperr.Precondition("no trip could be resolved for the supplied trip fields")
			}
			if trip != nil {
				if err := applyTripFields(tx, trip, patch, actor); err != nil {
					return err
				}
				if patch.TicketBusTrips != nil {
					n, err := replaceTicketAllocations(tx, trip.BusTripID, *patch.TicketBusTrips, actor)
					if err != nil {
						return err
					}
					if n > 0 && ba.Status == models.StatusNotReady && ba.Checklist.AllTrue() {
						if err := saveStatus(tx, ba, models.StatusNotStarted, actor); err != nil {
							return err
						}
					}
				}
			}
		}

		if patch.ResetCompleted {
			if filed, err = resetCycle(tx, ba, reg, patch.DamageFields, actor, now); err != nil {
				return err
			}
		}
		status = ba.Status
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("bus_assignment_id", id).Info("UpdateAssignment: rejected")
		return nil, apperr.FromDB("bus assignment", id, err)
	}

	var extra []string
	if filed {
		extra = append(extra, cache.EntityMaintenance)
	}
	s.afterCommit(ctx, id, "assignment.updated", string(status), extra...)
	return s.GetAssignment(ctx, id)
}

// Reset closes the current cycle: the bus returns to the depot, the latest
// trip is completed and a damage report is filed.
func (s *Service) Reset(ctx context.Context, id string, damage DamageFields, actor string) (*AssignmentView, error) {
	return s.UpdateAssignment(ctx, id, AssignmentPatch{ResetCompleted: true, DamageFields: damage}, actor)
}

// dispatchGate requires a quota policy covering the dispatch time. The time
// is the patch's DispatchedAt, else the open trip's, else now. When the trip
// has no dispatch time yet the patch is given one.
func (s *Service) dispatchGate(tx *gorm.DB, ba *models.BusAssignment, reg *models.RegularBusAssignment, patch *AssignmentPatch, now time.Time) error {
	if reg == nil {
		return apperr.Precondition(noPolicyMsg)
	}
	var open *models.BusTrip
	if reg.LatestBusTripID != nil {
		var trip models.BusTrip
		if err := tx.First(&trip, "bus_trip_id = ?", *reg.LatestBusTripID).Error; err == nil {
			open = &trip
		}
	}

	at := now
	switch {
	case patch.DispatchedAt.Ptr != nil:
		at = patch.DispatchedAt.Ptr.UTC()
	case open != nil && open.DispatchedAt != nil && ba.Status == models.StatusInOperation:
		at = *open.DispatchedAt
	}

	var policies []models.QuotaPolicy
	if err := tx.Preload("Fixed").Preload("Percentage").
		Where("regular_bus_assignment_id = ?", reg.RegularBusAssignmentID).
		Find(&policies).Error; err != nil {
		return apperr.FromDB("quota policy", "", err)
	}
	if quota.FindActive(policies, at) == nil {
		return apperr.Precondition(noPolicyMsg)
	}

	if !patch.DispatchedAt.Set && (open == nil || open.DispatchedAt == nil) {
		patch.DispatchedAt.Set = true
		patch.DispatchedAt.Ptr = &at
	}
	return nil
}

func (s *Service) applyAssignmentFields(tx *gorm.DB, ba *models.BusAssignment, reg *models.RegularBusAssignment,
	patch AssignmentPatch, checklist models.Checklist, status models.BusOperationStatus, actor string) error {
	if patch.RouteID != nil && (ba.RouteID == nil || *ba.RouteID != *patch.RouteID) {
		if err := requireRoute(tx, *patch.RouteID); err != nil {
			return err
		}
		ba.RouteID = patch.RouteID
	}
	ba.Checklist = checklist
	ba.Status = status
	ba.UpdatedBy = actor
	if err := tx.Omit(clause.Associations).Save(ba).Error; err != nil {
		return apperr.FromDB("bus assignment", ba.BusAssignmentID, err)
	}

	if reg == nil || (patch.DriverID == nil && patch.ConductorID == nil) {
		return nil
	}
	driver, conductor := reg.DriverID, reg.ConductorID
	if patch.DriverID != nil {
		driver = *patch.DriverID
	}
	if patch.ConductorID != nil {
		conductor = *patch.ConductorID
	}
	if driver == "" || conductor == "" || driver == conductor {
		return apperr.Validation("driver and conductor must be two different employees")
	}
	if err := ensureCrewAvailable(tx, "", driver, conductor, ba.BusAssignmentID); err != nil {
		return err
	}
	reg.DriverID, reg.ConductorID, reg.UpdatedBy = driver, conductor, actor
	err := tx.Model(&models.RegularBusAssignment{}).
		Where("regular_bus_assignment_id = ?", reg.RegularBusAssignmentID).
		Updates(map[string]interface{}{"driver_id": driver, "conductor_id": conductor, "updated_by": actor}).Error
	return apperr.FromDB("regular bus assignment", reg.RegularBusAssignmentID, err)
}

// resetCycle files the damage report, clears the checklist, completes the
// latest trip and detaches it. An assignment that is already NotReady with
// no latest trip has nothing to reset. filed reports whether a damage report
// was written.
func resetCycle(tx *gorm.DB, ba *models.BusAssignment, reg *models.RegularBusAssignment, damage DamageFields, actor string, now time.Time) (filed bool, err error) {
	var tripID *string
	if reg != nil {
		tripID = reg.LatestBusTripID
	}
	if ba.Status == models.StatusNotReady && tripID == nil {
		return false, nil
	}

	report := models.DamageReport{
		DamageReportID:   ids.New(ids.DamageReport),
		BusAssignmentID:  ba.BusAssignmentID,
		BusTripID:        tripID,
		VehicleCondition: damage.Condition(),
		Note:             damage.DNote,
		CheckDate:        now,
	}
	report.Status = report.DeriveStatus()
	if damage.DStatus != nil {
		report.Status = *damage.DStatus
	}
	report.Stamp(actor)
	if err := maintenance.InsertReport(tx, &report, now); err != nil {
		return false, err
	}

	ba.Checklist = models.Checklist{}
	if err := saveStatus(tx, ba, models.StatusNotReady, actor); err != nil {
		return true, err
	}

	if tripID == nil {
		return true, nil
	}
	err = tx.Model(&models.BusTrip{}).
		Where("bus_trip_id = ? AND completed_at IS NULL", *tripID).
		Updates(map[string]interface{}{"completed_at": now, "updated_by": actor}).Error
	if err != nil {
		return true, apperr.FromDB("bus trip", *tripID, err)
	}
	return true, setLatestTrip(tx, reg, nil, actor)
}

func saveStatus(tx *gorm.DB, ba *models.BusAssignment, status models.BusOperationStatus, actor string) error {
	ba.Status = status
	ba.UpdatedBy = actor
	return apperr.FromDB("bus assignment", ba.BusAssignmentID, tx.Omit(clause.Associations).Save(ba).Error)
}

// lockAssignment loads a live assignment row under a row lock together with
// its regular extension.
func lockAssignment(tx *gorm.DB, id string) (*models.BusAssignment, *models.RegularBusAssignment, error) {
	var ba models.BusAssignment
	if err := forUpdate(tx).First(&ba, "bus_assignment_id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, nil, apperr.FromDB("bus assignment", id, err)
	}
	var regs []models.RegularBusAssignment
	if err := tx.Where("regular_bus_assignment_id = ?", id).Limit(1).Find(&regs).Error; err != nil {
		return nil, nil, apperr.FromDB("regular bus assignment", id, err)
	}
	if len(regs) == 0 {
		return &ba, nil, nil
	}
	return &ba, &regs[0], nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
