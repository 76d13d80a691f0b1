package operations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/feed"
	"fleetops/internal/maintenance"
	"fleetops/internal/models"
	"fleetops/internal/optional"
	"fleetops/internal/testdb"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []feed.Event
}

func (r *recorder) Publish(ev feed.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fixture struct {
	db  *gorm.DB
	svc *Service
	pub *recorder
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	require.NoError(t, db.Create(&models.Route{RouteID: "RT-1", RouteName: "Cubao - Baclaran"}).Error)
	require.NoError(t, db.Create(&models.TicketType{TicketTypeID: "TT-REG", Value: decimal.NewFromInt(15)}).Error)
	pub := &recorder{}
	svc := NewService(db, nil, pub, nil, WithClock(func() time.Time { return fixedNow }))
	return &fixture{db: db, svc: svc, pub: pub, ctx: context.Background()}
}

func june1Policy(kind string, value int64) QuotaPolicyInput {
	return QuotaPolicyInput{
		StartDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		QuotaType:  kind,
		QuotaValue: decimal.NewFromInt(value),
	}
}

func (f *fixture) create(t *testing.T, bus, driver, conductor string, policies ...QuotaPolicyInput) *AssignmentView {
	t.Helper()
	v, err := f.svc.CreateRegularAssignment(f.ctx, CreateAssignmentInput{
		BusID: bus, RouteID: "RT-1", DriverID: driver, ConductorID: conductor, QuotaPolicies: policies,
	}, "dispatcher")
	require.NoError(t, err)
	return v
}

func allTrue() AssignmentPatch {
	yes := func() *bool { b := true; return &b }
	return AssignmentPatch{
		Battery: yes(), Lights: yes(), Oil: yes(), Water: yes(), Brake: yes(), Air: yes(),
		Gas: yes(), Engine: yes(), TireCondition: yes(), SelfDriver: yes(), SelfConductor: yes(),
	}
}

func status(s models.BusOperationStatus) *models.BusOperationStatus { return &s }

func (f *fixture) ready(t *testing.T, id string) {
	t.Helper()
	_, err := f.svc.UpdateAssignment(f.ctx, id, allTrue(), "dispatcher")
	require.NoError(t, err)
}

func (f *fixture) dispatch(t *testing.T, id string, at time.Time) *AssignmentView {
	t.Helper()
	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{
		Status:       status(models.StatusInOperation),
		DispatchedAt: optional.Of(at),
	}, "dispatcher")
	require.NoError(t, err)
	return v
}

func (f *fixture) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestCreateRegularAssignmentStartsNotReady(t *testing.T) {
	f := newFixture(t)
	v := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000))

	assert.Equal(t, models.StatusNotReady, v.Status)
	assert.Equal(t, models.AssignmentRegular, v.AssignmentType)
	assert.False(t, v.Checklist.AllTrue())
	require.NotNil(t, v.RegularBusAssignment)
	require.Len(t, v.RegularBusAssignment.QuotaPolicies, 1)
	require.NotNil(t, v.RegularBusAssignment.QuotaPolicies[0].Fixed)
	assert.True(t, v.RegularBusAssignment.QuotaPolicies[0].Fixed.Quota.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, v.Route)
	assert.Equal(t, "Cubao - Baclaran", v.Route.RouteName)
}

func TestCreateRegularAssignmentConflicts(t *testing.T) {
	f := newFixture(t)
	f.create(t, "BUS-1", "EMP-1", "EMP-2")

	cases := []CreateAssignmentInput{
		{BusID: "BUS-1", RouteID: "RT-1", DriverID: "EMP-3", ConductorID: "EMP-4"},
		{BusID: "BUS-2", RouteID: "RT-1", DriverID: "EMP-1", ConductorID: "EMP-4"},
		{BusID: "BUS-2", RouteID: "RT-1", DriverID: "EMP-3", ConductorID: "EMP-1"},
		{BusID: "BUS-2", RouteID: "RT-1", DriverID: "EMP-2", ConductorID: "EMP-4"},
	}
	for _, in := range cases {
		_, err := f.svc.CreateRegularAssignment(f.ctx, in, "dispatcher")
		assert.True(t, apperr.IsConflict(err), "%+v: %v", in, err)
	}
}

func TestDeletedAssignmentFreesCrew(t *testing.T) {
	f := newFixture(t)
	v := f.create(t, "BUS-1", "EMP-1", "EMP-2")
	require.NoError(t, f.svc.DeleteAssignment(f.ctx, v.BusAssignmentID, "dispatcher"))

	_, err := f.svc.GetAssignment(f.ctx, v.BusAssignmentID)
	assert.True(t, apperr.IsNotFound(err))
	f.create(t, "BUS-1", "EMP-1", "EMP-2")
}

func TestCreateRegularAssignmentUnknownRoute(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRegularAssignment(f.ctx, CreateAssignmentInput{
		BusID: "BUS-1", RouteID: "RT-404", DriverID: "EMP-1", ConductorID: "EMP-2",
	}, "dispatcher")
	assert.True(t, apperr.IsNotFound(err))
}

func TestDispatchWithActivePolicy(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)

	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	v := f.dispatch(t, id, at)

	assert.Equal(t, models.StatusInOperation, v.Status)
	trip := v.RegularBusAssignment.LatestBusTrip
	require.NotNil(t, trip)
	require.NotNil(t, trip.DispatchedAt)
	assert.True(t, at.Equal(*trip.DispatchedAt))
	assert.Equal(t, int64(1), f.count(t, &models.BusTrip{}, "regular_bus_assignment_id = ?", id))

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, feed.TopicOperations, last.Topic)
	assert.Equal(t, id, last.BusAssignmentID)
	assert.Equal(t, string(models.StatusInOperation), last.Status)
}

func TestDispatchWithoutPolicyChangesNothing(t *testing.T) {
	f := newFixture(t)
	policy := june1Policy("Fixed", 1000)
	policy.StartDate = policy.StartDate.AddDate(0, 0, 5)
	policy.EndDate = policy.EndDate.AddDate(0, 0, 5)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", policy).BusAssignmentID
	f.ready(t, id)

	_, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{
		Status:       status(models.StatusInOperation),
		DispatchedAt: optional.Of(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		Sales:        optional.Of(decimal.NewFromInt(500)),
	}, "dispatcher")
	require.Error(t, err)
	assert.True(t, apperr.IsPrecondition(err))
	assert.Equal(t, noPolicyMsg, err.Error())

	v, err := f.svc.GetAssignment(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotReady, v.Status)
	assert.Nil(t, v.RegularBusAssignment.LatestBusTripID)
	assert.Zero(t, f.count(t, &models.BusTrip{}, "regular_bus_assignment_id = ?", id))
}

func TestDispatchDefaultsToNow(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Percentage", 1)).BusAssignmentID
	f.ready(t, id)

	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{Status: status(models.StatusInOperation)}, "dispatcher")
	require.NoError(t, err)
	trip := v.RegularBusAssignment.LatestBusTrip
	require.NotNil(t, trip)
	require.NotNil(t, trip.DispatchedAt)
	assert.True(t, fixedNow.Equal(*trip.DispatchedAt))
}

func TestReadinessGate(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID

	// Requesting NotStarted with an incomplete checklist is demoted.
	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{Status: status(models.StatusNotStarted)}, "dispatcher")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotReady, v.Status)

	f.ready(t, id)
	f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	no := false
	v, err = f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{Oil: &no}, "dispatcher")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotReady, v.Status)
	assert.False(t, v.Oil)
}

func TestTicketsPromoteReadyAssignment(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2").BusAssignmentID
	f.ready(t, id)

	tickets := []TicketAllocation{{TicketTypeID: "TT-REG", StartingIDNumber: 1000, EndingIDNumber: 1050, OverallEndingID: 1099}}
	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{TicketBusTrips: &tickets}, "dispatcher")
	require.NoError(t, err)

	assert.Equal(t, models.StatusNotStarted, v.Status)
	trip := v.RegularBusAssignment.LatestBusTrip
	require.NotNil(t, trip)
	assert.Nil(t, trip.DispatchedAt)
	require.Len(t, trip.TicketBusTrips, 1)
	assert.Equal(t, 1050, trip.TicketBusTrips[0].EndingIDNumber)
}

func TestTicketsDoNotPromoteIncompleteChecklist(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2").BusAssignmentID

	tickets := []TicketAllocation{{TicketTypeID: "TT-REG", StartingIDNumber: 1, EndingIDNumber: 2, OverallEndingID: 3}}
	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{TicketBusTrips: &tickets}, "dispatcher")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotReady, v.Status)
}

func TestInvalidTicketRangeKeepsExistingTickets(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2").BusAssignmentID
	good := []TicketAllocation{{TicketTypeID: "TT-REG", StartingIDNumber: 1000, EndingIDNumber: 1050, OverallEndingID: 1099}}
	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{TicketBusTrips: &good}, "dispatcher")
	require.NoError(t, err)
	tripID := *v.RegularBusAssignment.LatestBusTripID

	bad := []TicketAllocation{{TicketTypeID: "TT-REG", StartingIDNumber: 1000, EndingIDNumber: 1200, OverallEndingID: 1099}}
	_, err = f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{TicketBusTrips: &bad}, "dispatcher")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "EndingIDNumber must be between StartingIDNumber and OverallEndingID.")

	var rows []models.TicketBusTrip
	require.NoError(t, f.db.Where("bus_trip_id = ?", tripID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 1050, rows[0].EndingIDNumber)
}

func TestUnknownTicketTypeRollsBack(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2").BusAssignmentID
	tickets := []TicketAllocation{{TicketTypeID: "TT-NOPE", StartingIDNumber: 1, EndingIDNumber: 2, OverallEndingID: 3}}

	_, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{TicketBusTrips: &tickets}, "dispatcher")
	assert.True(t, apperr.IsNotFound(err))
	assert.Zero(t, f.count(t, &models.BusTrip{}, "regular_bus_assignment_id = ?", id))
}

func TestTripFieldsArePartial(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)
	f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{
		Sales:         optional.Of(decimal.NewFromInt(2000)),
		PaymentMethod: optional.Of(models.PaymentCompanyCash),
	}, "cashier")
	require.NoError(t, err)
	v, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{Remarks: optional.Of("late start")}, "cashier")
	require.NoError(t, err)

	trip := v.RegularBusAssignment.LatestBusTrip
	require.NotNil(t, trip)
	assert.True(t, trip.Sales.Valid)
	assert.True(t, trip.Sales.Decimal.Equal(decimal.NewFromInt(2000)))
	require.NotNil(t, trip.PaymentMethod)
	assert.Equal(t, models.PaymentCompanyCash, *trip.PaymentMethod)
	require.NotNil(t, trip.Remarks)
	assert.Equal(t, "late start", *trip.Remarks)
	assert.Equal(t, "cashier", trip.UpdatedBy)
	assert.Equal(t, models.StatusInOperation, v.Status)
}

func TestPatchValidation(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2").BusAssignmentID

	_, err := f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{PaymentMethod: optional.Of(models.PaymentMethod("Card"))}, "x")
	assert.True(t, apperr.IsValidation(err))
	_, err = f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{Status: status("Parked")}, "x")
	assert.True(t, apperr.IsValidation(err))
	_, err = f.svc.UpdateAssignment(f.ctx, id, AssignmentPatch{DispatchedAt: optional.Null[time.Time]()}, "x")
	assert.True(t, apperr.IsValidation(err))
}

func TestResetCompletesCycle(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)
	v := f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	tripID := *v.RegularBusAssignment.LatestBusTripID

	no := false
	note := "cracked headlight"
	v, err := f.svc.Reset(f.ctx, id, DamageFields{DLights: &no, DNote: &note}, "dispatcher")
	require.NoError(t, err)

	assert.Equal(t, models.StatusNotReady, v.Status)
	assert.Equal(t, models.Checklist{}, v.Checklist)
	assert.Nil(t, v.RegularBusAssignment.LatestBusTripID)

	var trip models.BusTrip
	require.NoError(t, f.db.First(&trip, "bus_trip_id = ?", tripID).Error)
	require.NotNil(t, trip.CompletedAt)
	assert.True(t, fixedNow.Equal(*trip.CompletedAt))

	var reports []models.DamageReport
	require.NoError(t, f.db.Where("bus_assignment_id = ?", id).Find(&reports).Error)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Lights)
	assert.True(t, reports[0].Battery)
	assert.Equal(t, models.DamagePending, reports[0].Status)
	require.NotNil(t, reports[0].BusTripID)
	assert.Equal(t, tripID, *reports[0].BusTripID)
}

func TestResetIsIdempotent(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)
	f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.Reset(f.ctx, id, DamageFields{}, "dispatcher")
	require.NoError(t, err)
	_, err = f.svc.Reset(f.ctx, id, DamageFields{}, "dispatcher")
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.count(t, &models.DamageReport{}, "bus_assignment_id = ?", id))
}

func TestResetRecordsCleanReportAsNA(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)
	f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.Reset(f.ctx, id, DamageFields{}, "dispatcher")
	require.NoError(t, err)
	var report models.DamageReport
	require.NoError(t, f.db.First(&report, "bus_assignment_id = ?", id).Error)
	assert.Equal(t, models.DamageNA, report.Status)
}

func TestResetWithAcceptedDamageOpensWorkOrder(t *testing.T) {
	f := newFixture(t)
	c := cache.New(cache.NewMemoryStore(time.Minute), time.Minute, time.Second)
	svc := NewService(f.db, c, nil, nil, WithClock(func() time.Time { return fixedNow }))
	works := maintenance.NewService(f.db, c)

	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)
	f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	listed, err := works.ListMaintenanceWorks(f.ctx, maintenance.WorkFilter{})
	require.NoError(t, err)
	require.Empty(t, listed)

	no := false
	accepted := models.DamageAccepted
	_, err = svc.Reset(f.ctx, id, DamageFields{DBrake: &no, DStatus: &accepted}, "dispatcher")
	require.NoError(t, err)

	var report models.DamageReport
	require.NoError(t, f.db.First(&report, "bus_assignment_id = ?", id).Error)
	assert.Equal(t, models.DamageAccepted, report.Status)
	assert.Equal(t, int64(1), f.count(t, &models.MaintenanceWork{}, "damage_report_id = ?", report.DamageReportID))

	listed, err = works.ListMaintenanceWorks(f.ctx, maintenance.WorkFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, report.DamageReportID, listed[0].DamageReportID)
}

func TestQuotaPolicyOverlapIsRejected(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID

	overlapping := june1Policy("Percentage", 1)
	overlapping.StartDate = overlapping.StartDate.Add(12 * time.Hour)
	overlapping.EndDate = overlapping.EndDate.Add(12 * time.Hour)
	_, err := f.svc.CreateQuotaPolicy(f.ctx, id, overlapping, "admin")
	assert.True(t, apperr.IsValidation(err))

	next := june1Policy("Fixed", 800)
	next.StartDate = next.StartDate.AddDate(0, 0, 1)
	next.EndDate = next.EndDate.AddDate(0, 0, 1)
	created, err := f.svc.CreateQuotaPolicy(f.ctx, id, next, "admin")
	require.NoError(t, err)

	policies, err := f.svc.ListQuotaPolicies(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, created.QuotaPolicyID, policies[1].QuotaPolicyID)

	// Moving the second window back over the first fails.
	_, err = f.svc.UpdateQuotaPolicy(f.ctx, created.QuotaPolicyID, june1Policy("Fixed", 800), "admin")
	assert.True(t, apperr.IsValidation(err))

	// Switching its rule keeps the window.
	next.QuotaType, next.QuotaValue = "Percentage", decimal.RequireFromString("0.25")
	updated, err := f.svc.UpdateQuotaPolicy(f.ctx, created.QuotaPolicyID, next, "admin")
	require.NoError(t, err)
	require.NotNil(t, updated.Percentage)
	assert.Nil(t, updated.Fixed)
	assert.Zero(t, f.count(t, &models.FixedQuota{}, "f_quota_policy_id = ?", created.QuotaPolicyID))

	require.NoError(t, f.svc.DeleteQuotaPolicy(f.ctx, created.QuotaPolicyID))
	assert.True(t, apperr.IsNotFound(f.svc.DeleteQuotaPolicy(f.ctx, created.QuotaPolicyID)))
}

func TestUpdateQuotaPolicyOfDeletedAssignment(t *testing.T) {
	f := newFixture(t)
	v := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000))
	policyID := v.RegularBusAssignment.QuotaPolicies[0].QuotaPolicyID
	require.NoError(t, f.svc.DeleteAssignment(f.ctx, v.BusAssignmentID, "dispatcher"))

	_, err := f.svc.UpdateQuotaPolicy(f.ctx, policyID, june1Policy("Fixed", 1500), "dispatcher")
	assert.True(t, apperr.IsNotFound(err), "got %v", err)

	var qp models.QuotaPolicy
	require.NoError(t, f.db.Preload("Fixed").First(&qp, "quota_policy_id = ?", policyID).Error)
	require.NotNil(t, qp.Fixed)
	assert.True(t, qp.Fixed.Quota.Equal(decimal.NewFromInt(1000)))
}

func TestCreateWithOverlappingPoliciesFails(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRegularAssignment(f.ctx, CreateAssignmentInput{
		BusID: "BUS-1", RouteID: "RT-1", DriverID: "EMP-1", ConductorID: "EMP-2",
		QuotaPolicies: []QuotaPolicyInput{june1Policy("Fixed", 1000), june1Policy("Fixed", 900)},
	}, "dispatcher")
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, f.count(t, &models.BusAssignment{}, "bus_id = ?", "BUS-1"))
}

func TestUpdateTripFlagsReportsPerItem(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "BUS-1", "EMP-1", "EMP-2", june1Policy("Fixed", 1000)).BusAssignmentID
	f.ready(t, id)
	v := f.dispatch(t, id, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	tripID := *v.RegularBusAssignment.LatestBusTripID

	yes := true
	res, err := f.svc.UpdateTripFlags(f.ctx, []TripFlagUpdate{
		{BusTripID: tripID, IsRevenueRecorded: &yes},
		{BusTripID: "BT-missing", IsExpenseRecorded: &yes},
		{BusTripID: tripID},
	}, "accounting")
	require.NoError(t, err)
	assert.Equal(t, []string{tripID}, res.Updated)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "BT-missing", res.Failed[0].BusTripID)

	recorded := true
	trips, err := f.svc.ListTrips(f.ctx, TripFilter{IsRevenueRecorded: &recorded})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, tripID, trips[0].BusTripID)
	assert.False(t, trips[0].IsExpenseRecorded)
}
