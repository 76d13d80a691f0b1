package operations

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/ids"
	"fleetops/internal/models"
)

// ensureTrip resolves the trip a patch writes to:
//  1. an explicit LatestBusTripID, which must belong to the assignment;
//  2. the assignment's current latest trip;
//  3. a new trip when the patch carries trip fields or tickets.
//
// It returns nil when none applies.
func ensureTrip(tx *gorm.DB, reg *models.RegularBusAssignment, patch AssignmentPatch, actor string) (*models.BusTrip, error) {
	if patch.LatestBusTripID != nil {
		var trip models.BusTrip
		err := tx.Where("bus_trip_id = ? AND regular_bus_assignment_id = ?", *patch.LatestBusTripID, reg.RegularBusAssignmentID).
			First(&trip).Error
		if err != nil {
			return nil, apperr.FromDB("bus trip", *patch.LatestBusTripID, err)
		}
		if err := setLatestTrip(tx, reg, &trip.BusTripID, actor); err != nil {
			return nil, err
		}
		return &trip, nil
	}

	if reg.LatestBusTripID != nil {
		var trip models.BusTrip
		err := tx.First(&trip, "bus_trip_id = ?", *reg.LatestBusTripID).Error
		if err == nil {
			return &trip, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.FromDB("bus trip", *reg.LatestBusTripID, err)
		}
		// Dangling reference: open a fresh trip below if the patch needs one.
	}

	if !patch.createsTrip() {
		return nil, nil
	}
	trip := models.BusTrip{
		BusTripID:              ids.New(ids.BusTrip),
		RegularBusAssignmentID: reg.RegularBusAssignmentID,
	}
	trip.Stamp(actor)
	if err := tx.Omit(clause.Associations).Create(&trip).Error; err != nil {
		return nil, apperr.FromDB("bus trip", trip.BusTripID, err)
	}
	if err := setLatestTrip(tx, reg, &trip.BusTripID, actor); err != nil {
		return nil, err
	}
	return &trip, nil
}

func setLatestTrip(tx *gorm.DB, reg *models.RegularBusAssignment, tripID *string, actor string) error {
	reg.LatestBusTripID = tripID
	reg.UpdatedBy = actor
	err := tx.Model(&models.RegularBusAssignment{}).
		Where("regular_bus_assignment_id = ?", reg.RegularBusAssignmentID).
		Updates(map[string]interface{}{"latest_bus_trip_id": tripID, "updated_by": actor}).Error
	return apperr.FromDB("regular bus assignment", reg.RegularBusAssignmentID, err)
}

// applyTripFields writes only the keys present in the patch.
func applyTripFields(tx *gorm.DB, trip *models.BusTrip, patch AssignmentPatch, actor string) error {
	if patch.DispatchedAt.Ptr != nil {
		t := patch.DispatchedAt.Ptr.UTC()
		trip.DispatchedAt = &t
	}
	if patch.CompletedAt.Set {
		if patch.CompletedAt.Ptr == nil {
			trip.CompletedAt = nil
		} else {
			t := patch.CompletedAt.Ptr.UTC()
			trip.CompletedAt = &t
		}
	}
	if patch.Sales.Set {
		trip.Sales = nullDecimal(patch.Sales.Ptr)
	}
	if patch.PettyCash.Set {
		trip.PettyCash = nullDecimal(patch.PettyCash.Ptr)
	}
	if patch.TripExpense.Set {
		trip.TripExpense = nullDecimal(patch.TripExpense.Ptr)
	}
	if patch.PaymentMethod.Set {
		trip.PaymentMethod = patch.PaymentMethod.Ptr
	}
	if patch.Remarks.Set {
		trip.Remarks = patch.Remarks.Ptr
	}
	trip.UpdatedBy = actor
	return apperr.FromDB("bus trip", trip.BusTripID, tx.Omit(clause.Associations).Save(trip).Error)
}

// replaceTicketAllocations validates the full set, then swaps it in for the
// trip's existing allocations. It returns how many allocations the trip now
// has.
func replaceTicketAllocations(tx *gorm.DB, tripID string, allocs []TicketAllocation, actor string) (int, error) {
	if err := ValidateAllocations(allocs); err != nil {
		return 0, err
	}
	if err := ensureTicketTypes(tx, allocs); err != nil {
		return 0, err
	}
	if err := tx.Where("bus_trip_id = ?", tripID).Delete(&models.TicketBusTrip{}).Error; err != nil {
		return 0, apperr.FromDB("ticket allocation", tripID, err)
	}
	for _, a := range allocs {
		row := models.TicketBusTrip{
			TicketBusTripID:  ids.New(ids.TicketBusTrip),
			BusTripID:        tripID,
			TicketTypeID:     a.TicketTypeID,
			StartingIDNumber: a.StartingIDNumber,
			EndingIDNumber:   a.EndingIDNumber,
			OverallEndingID:  a.OverallEndingID,
		}
		row.Stamp(actor)
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return 0, apperr.FromDB("ticket allocation", row.TicketBusTripID, err)
		}
	}
	return len(allocs), nil
}

func ensureTicketTypes(tx *gorm.DB, allocs []TicketAllocation) error {
	seen := map[string]bool{}
	var wanted []string
	for _, a := range allocs {
		if !seen[a.TicketTypeID] {
			seen[a.TicketTypeID] = true
			wanted = append(wanted, a.TicketTypeID)
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	var found []string
	if err := tx.Model(&models.TicketType{}).Where("ticket_type_id IN ?", wanted).Pluck("ticket_type_id", &found).Error; err != nil {
		return apperr.FromDB("ticket type", "", err)
	}
	have := map[string]bool{}
	for _, id := range found {
		have[id] = true
	}
	for _, id := range wanted {
		if !have[id] {
			return apperr.NotFound("ticket type", id)
		}
	}
	return nil
}
