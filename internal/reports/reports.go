// Package reports aggregates trips into the shortage and revenue reports and
// the operations dashboard.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/models"
	"fleetops/internal/quota"
	"fleetops/internal/registry"
	"fleetops/internal/shortage"
)

type Service struct {
	db        *gorm.DB
	cache     *cache.Cache
	directory *registry.Directory
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, c *cache.Cache, dir *registry.Directory, opts ...Option) *Service {
	s := &Service{db: db, cache: c, directory: dir, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Period is a closed dispatch-time window.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return apperr.ValidationError{Field: "period", Msg: "from and to are required"}
	}
	if p.To.Before(p.From) {
		return apperr.ValidationError{Field: "period", Msg: "to must not be before from"}
	}
	return nil
}

// tripRow is a dispatched trip with the assignment context reports need.
type tripRow struct {
	trip        models.BusTrip
	busID       string
	driverID    string
	conductorID string
}

// dispatchedTrips loads the trips dispatched in p together with every quota
// policy of the assignments they belong to.
func (s *Service) dispatchedTrips(ctx context.Context, p Period) ([]tripRow, map[string][]models.QuotaPolicy, error) {
	db := s.db.WithContext(ctx)
	var trips []models.BusTrip
	err := db.Where("dispatched_at >= ? AND dispatched_at <= ?", p.From.UTC(), p.To.UTC()).
		Order("dispatched_at").Order("bus_trip_id").Find(&trips).Error
	if err != nil {
		return nil, nil, apperr.FromDB("bus trip", "", err)
	}
	if len(trips) == 0 {
		return nil, map[string][]models.QuotaPolicy{}, nil
	}

	var assignmentIDs []string
	seen := map[string]bool{}
	for _, t := range trips {
		if !seen[t.RegularBusAssignmentID] {
			seen[t.RegularBusAssignmentID] = true
			assignmentIDs = append(assignmentIDs, t.RegularBusAssignmentID)
		}
	}

	var bas []models.BusAssignment
	if err := db.Preload("RegularBusAssignment").Where("bus_assignment_id IN ?", assignmentIDs).Find(&bas).Error; err != nil {
		return nil, nil, apperr.FromDB("bus assignment", "", err)
	}
	byID := make(map[string]models.BusAssignment, len(bas))
	for _, ba := range bas {
		byID[ba.BusAssignmentID] = ba
	}

	var policies []models.QuotaPolicy
	if err := db.Preload("Fixed").Preload("Percentage").
		Where("regular_bus_assignment_id IN ?", assignmentIDs).Find(&policies).Error; err != nil {
		return nil, nil, apperr.FromDB("quota policy", "", err)
	}
	byAssignment := map[string][]models.QuotaPolicy{}
	for _, qp := range policies {
		byAssignment[qp.RegularBusAssignmentID] = append(byAssignment[qp.RegularBusAssignmentID], qp)
	}

	rows := make([]tripRow, len(trips))
	for i, t := range trips {
		row := tripRow{trip: t}
		if ba, ok := byID[t.RegularBusAssignmentID]; ok {
			row.busID = ba.BusID
			if reg := ba.RegularBusAssignment; reg != nil {
				row.driverID, row.conductorID = reg.DriverID, reg.ConductorID
			}
		}
		rows[i] = row
	}
	return rows, byAssignment, nil
}

// EmployeeShortage totals what one crew member owes over a period.
type EmployeeShortage struct {
	EmployeeID string          `json:"EmployeeID"`
	Name       string          `json:"Name,omitempty"`
	Role       string          `json:"Role"`
	Trips      int             `json:"Trips"`
	Shortage   decimal.Decimal `json:"Shortage"`
}

// ShortageReport charges each counted trip's shortage to both its driver and
// its conductor. Trips without sales or without a covering policy are
// skipped, not counted as zero.
func (s *Service) ShortageReport(ctx context.Context, p Period) ([]EmployeeShortage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, policies, err := s.dispatchedTrips(ctx, p)
	if err != nil {
		return nil, err
	}

	type key struct{ id, role string }
	totals := map[key]*EmployeeShortage{}
	add := func(id, role string, amount decimal.Decimal) {
		if id == "" {
			return
		}
		k := key{id, role}
		e, ok := totals[k]
		if !ok {
			e = &EmployeeShortage{EmployeeID: id, Role: role, Shortage: decimal.Zero}
			totals[k] = e
		}
		e.Trips++
		e.Shortage = e.Shortage.Add(amount)
	}
	for _, r := range rows {
		ts, ok := shortage.ForTrip(r.trip, policies[r.trip.RegularBusAssignmentID])
		if !ok {
			continue
		}
		add(r.driverID, "Driver", ts.PerEmployee)
		add(r.conductorID, "Conductor", ts.PerEmployee)
	}

	emps := s.directory.Employees(ctx)
	out := make([]EmployeeShortage, 0, len(totals))
	for _, e := range totals {
		e.Name = emps[e.EmployeeID].FullName()
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Shortage.Equal(out[j].Shortage) {
			return out[i].Shortage.GreaterThan(out[j].Shortage)
		}
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Role < out[j].Role
	})
	return out, nil
}

// RevenueLine is one trip of the revenue report.
type RevenueLine struct {
	BusTripID         string                `json:"BusTripID"`
	BusAssignmentID   string                `json:"BusAssignmentID"`
	BusID             string                `json:"BusID"`
	PlateNumber       string                `json:"PlateNumber,omitempty"`
	DispatchedAt      *time.Time            `json:"DispatchedAt"`
	CompletedAt       *time.Time            `json:"CompletedAt"`
	AssignmentType    quota.Kind            `json:"AssignmentType"`
	QuotaValue        decimal.Decimal       `json:"QuotaValue"`
	QuotaAmount       decimal.Decimal       `json:"QuotaAmount"`
	Sales             decimal.NullDecimal   `json:"Sales"`
	TripExpense       decimal.NullDecimal   `json:"TripExpense"`
	PettyCash         decimal.NullDecimal   `json:"PettyCash"`
	PaymentMethod     *models.PaymentMethod `json:"Payment_Method"`
	Shortage          decimal.Decimal       `json:"Shortage"`
	IsRevenueRecorded bool                  `json:"IsRevenueRecorded"`
}

// RevenueReport lists every trip dispatched in the period with the policy
// that covered it. Trips without a policy are labelled "Bus Rental".
func (s *Service) RevenueReport(ctx context.Context, p Period) ([]RevenueLine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, policies, err := s.dispatchedTrips(ctx, p)
	if err != nil {
		return nil, err
	}
	buses := s.directory.Buses(ctx)
	out := make([]RevenueLine, 0, len(rows))
	for _, r := range rows {
		t := r.trip
		sales := decimal.Zero
		if t.Sales.Valid {
			sales = t.Sales.Decimal
		}
		var res quota.Resolution
		if t.DispatchedAt != nil {
			res = quota.Resolve(quota.FindActive(policies[t.RegularBusAssignmentID], *t.DispatchedAt), sales)
		} else {
			res = quota.Resolve(nil, sales)
		}
		line := RevenueLine{
			BusTripID:         t.BusTripID,
			BusAssignmentID:   t.RegularBusAssignmentID,
			BusID:             r.busID,
			PlateNumber:       buses[r.busID].PlateNumber,
			DispatchedAt:      t.DispatchedAt,
			CompletedAt:       t.CompletedAt,
			AssignmentType:    res.Kind,
			QuotaValue:        res.Value,
			QuotaAmount:       res.Amount,
			Sales:             t.Sales,
			TripExpense:       t.TripExpense,
			PettyCash:         t.PettyCash,
			PaymentMethod:     t.PaymentMethod,
			Shortage:          decimal.Zero,
			IsRevenueRecorded: t.IsRevenueRecorded,
		}
		if ts, ok := shortage.ForTrip(t, policies[t.RegularBusAssignmentID]); ok {
			line.Shortage = ts.PerEmployee
		}
		out = append(out, line)
	}
	return out, nil
}
