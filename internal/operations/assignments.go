package operations

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/ids"
	"fleetops/internal/models"
	"fleetops/internal/quota"
)

// AssignmentView is a hydrated assignment with registry names joined in.
// Names are blank when the registry is unavailable.
type AssignmentView struct {
	models.BusAssignment
	PlateNumber   string `json:"PlateNumber,omitempty"`
	DriverName    string `json:"DriverName,omitempty"`
	ConductorName string `json:"ConductorName,omitempty"`
}

// AssignmentFilter narrows ListAssignments.
type AssignmentFilter struct {
	Status  string
	Type    string
	RouteID string
}

func (f AssignmentFilter) key() cache.Key {
	return cache.NewKey(cache.EntityAssignments, "status", f.Status, "type", f.Type, "route", f.RouteID)
}

// CreateRegularAssignment opens a NotReady assignment with an empty
// checklist.
func (s *Service) CreateRegularAssignment(ctx context.Context, in CreateAssignmentInput, actor string) (*AssignmentView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	windows := make([]quota.Window, len(in.QuotaPolicies))
	for i, qp := range in.QuotaPolicies {
		windows[i] = quota.Window{Start: qp.StartDate, End: qp.EndDate}
	}
	if err := quota.ValidateNoOverlap(windows); err != nil {
		return nil, err
	}

	id := ids.New(ids.BusAssignment)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRoute(tx, in.RouteID); err != nil {
			return err
		}
		if err := ensureCrewAvailable(tx, in.BusID, in.DriverID, in.ConductorID, ""); err != nil {
			return err
		}

		routeID := in.RouteID
		ba := models.BusAssignment{
			BusAssignmentID: id,
			BusID:           in.BusID,
			RouteID:         &routeID,
			AssignmentType:  models.AssignmentRegular,
			Status:          models.StatusNotReady,
		}
		ba.Stamp(actor)
		if err := tx.Omit(clause.Associations).Create(&ba).Error; err != nil {
			return apperr.FromDB("bus assignment", id, err)
		}
		reg := models.RegularBusAssignment{
			RegularBusAssignmentID: id,
			DriverID:               in.DriverID,
			ConductorID:            in.ConductorID,
		}
		reg.Stamp(actor)
		if err := tx.Omit(clause.Associations).Create(&reg).Error; err != nil {
			return apperr.FromDB("regular bus assignment", id, err)
		}
		for _, qp := range in.QuotaPolicies {
			if _, err := insertPolicy(tx, id, qp, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB("bus assignment", id, err)
	}

	logrus.WithFields(logrus.Fields{"bus_assignment_id": id, "bus_id": in.BusID}).Info("CreateRegularAssignment: created")
	s.afterCommit(ctx, id, "assignment.created", string(models.StatusNotReady))
	return s.GetAssignment(ctx, id)
}

// DeleteAssignment soft-deletes the assignment, freeing its bus and crew.
func (s *Service) DeleteAssignment(ctx context.Context, id, actor string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ba, _, err := lockAssignment(tx, id)
		if err != nil {
			return err
		}
		if ba.Status == models.StatusInOperation {
			return apperr.Precondition("cannot delete an assignment that is in operation")
		}
		return tx.Model(&models.BusAssignment{}).Where("bus_assignment_id = ?", id).
			Updates(map[string]interface{}{"is_deleted": true, "updated_by": actor}).Error
	})
	if err != nil {
		return apperr.FromDB("bus assignment", id, err)
	}
	s.afterCommit(ctx, id, "assignment.deleted", "")
	return nil
}

// GetAssignment returns the hydrated assignment.
func (s *Service) GetAssignment(ctx context.Context, id string) (*AssignmentView, error) {
	var ba models.BusAssignment
	err := hydrate(s.db.WithContext(ctx)).
		First(&ba, "bus_assignment_id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		return nil, apperr.FromDB("bus assignment", id, err)
	}
	list := []models.BusAssignment{ba}
	if err := attachLatestTrips(s.db.WithContext(ctx), list); err != nil {
		return nil, err
	}
	views := s.decorate(ctx, list)
	return &views[0], nil
}

// ListAssignments returns live assignments, read through the cache.
func (s *Service) ListAssignments(ctx context.Context, f AssignmentFilter) ([]AssignmentView, error) {
	return cache.ReadThrough(ctx, s.cache, f.key(), func(ctx context.Context) ([]AssignmentView, error) {
		q := hydrate(s.db.WithContext(ctx)).Where("is_deleted = ?", false)
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Type != "" {
			q = q.Where("assignment_type = ?", f.Type)
		}
		if f.RouteID != "" {
			q = q.Where("route_id = ?", f.RouteID)
		}
		var list []models.BusAssignment
		if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
			return nil, apperr.FromDB("bus assignment", "", err)
		}
		if err := attachLatestTrips(s.db.WithContext(ctx), list); err != nil {
			return nil, err
		}
		return s.decorate(ctx, list), nil
	})
}

func hydrate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Route").
		Preload("RegularBusAssignment").
		Preload("RegularBusAssignment.QuotaPolicies", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date ASC")
		}).
		Preload("RegularBusAssignment.QuotaPolicies.Fixed").
		Preload("RegularBusAssignment.QuotaPolicies.Percentage").
		Preload("RentalBusAssignment").
		Preload("RentalBusAssignment.RentalDrivers")
}

// attachLatestTrips loads each regular assignment's latest trip with its
// tickets in one query.
func attachLatestTrips(db *gorm.DB, list []models.BusAssignment) error {
	var tripIDs []string
	for _, ba := range list {
		if ba.RegularBusAssignment != nil && ba.RegularBusAssignment.LatestBusTripID != nil {
			tripIDs = append(tripIDs, *ba.RegularBusAssignment.LatestBusTripID)
		}
	}
	if len(tripIDs) == 0 {
		return nil
	}
	var trips []models.BusTrip
	if err := db.Preload("TicketBusTrips").Preload("TicketBusTrips.TicketType").
		Where("bus_trip_id IN ?", tripIDs).Find(&trips).Error; err != nil {
		return apperr.FromDB("bus trip", "", err)
	}
	byID := make(map[string]*models.BusTrip, len(trips))
	for i := range trips {
		byID[trips[i].BusTripID] = &trips[i]
	}
	for i := range list {
		reg := list[i].RegularBusAssignment
		if reg != nil && reg.LatestBusTripID != nil {
			reg.LatestBusTrip = byID[*reg.LatestBusTripID]
		}
	}
	return nil
}

func (s *Service) decorate(ctx context.Context, list []models.BusAssignment) []AssignmentView {
	emps := s.directory.Employees(ctx)
	buses := s.directory.Buses(ctx)
	out := make([]AssignmentView, len(list))
	for i, ba := range list {
		v := AssignmentView{BusAssignment: ba, PlateNumber: buses[ba.BusID].PlateNumber}
		if reg := ba.RegularBusAssignment; reg != nil {
			v.DriverName = emps[reg.DriverID].FullName()
			v.ConductorName = emps[reg.ConductorID].FullName()
		}
		out[i] = v
	}
	return out
}

func requireRoute(tx *gorm.DB, routeID string) error {
	var n int64
	if err := tx.Model(&models.Route{}).Where("route_id = ? AND is_deleted = ?", routeID, false).Count(&n).Error; err != nil {
		return apperr.FromDB("route", routeID, err)
	}
	if n == 0 {
		return apperr.NotFound("route", routeID)
	}
	return nil
}

// ensureCrewAvailable fails when the bus, driver or conductor is already on
// another live regular assignment. Empty arguments are not checked.
func ensureCrewAvailable(tx *gorm.DB, busID, driverID, conductorID, excludeID string) error {
	live := func() *gorm.DB {
		q := tx.Model(&models.BusAssignment{}).
			Joins("JOIN regular_bus_assignments ON regular_bus_assignments.regular_bus_assignment_id = bus_assignments.bus_assignment_id").
			Where("bus_assignments.is_deleted = ?", false)
		if excludeID != "" {
			q = q.Where("bus_assignments.bus_assignment_id <> ?", excludeID)
		}
		return q
	}
	const crewWhere = "(regular_bus_assignments.driver_id = ? OR regular_bus_assignments.conductor_id = ?)"
	checks := []struct {
		value, where, msg string
		args              int
	}{
		{busID, "bus_assignments.bus_id = ?", "bus is already assigned", 1},
		{driverID, crewWhere, "driver is already assigned", 2},
		{conductorID, crewWhere, "conductor is already assigned", 2},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		args := make([]interface{}, c.args)
		for i := range args {
			args[i] = c.value
		}
		var n int64
		if err := live().Where(c.where, args...).Count(&n).Error; err != nil {
			return apperr.FromDB("bus assignment", "", err)
		}
		if n > 0 {
			return apperr.Conflict("bus assignment", c.msg)
		}
	}
	return nil
}
