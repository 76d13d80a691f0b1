package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/models"
	"fleetops/internal/testdb"
)

var fixedNow = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	db := testdb.Open(t)
	ba := models.BusAssignment{BusAssignmentID: "BA-1", BusID: "BUS-1", AssignmentType: models.AssignmentRegular, Status: models.StatusNotReady}
	require.NoError(t, db.Create(&ba).Error)
	c := cache.New(cache.NewMemoryStore(time.Minute), time.Minute, time.Second)
	return NewService(db, c, WithClock(func() time.Time { return fixedNow })), ba.BusAssignmentID
}

func TestVehicleCheckDefaultsToNoDamage(t *testing.T) {
	svc, ba := newService(t)
	ctx := context.Background()

	r, err := svc.CreateVehicleCheck(ctx, ba, ConditionInput{}, "mechanic")
	require.NoError(t, err)
	assert.True(t, r.AllTrue())
	assert.Equal(t, models.DamageNA, r.Status)
	assert.Nil(t, r.MaintenanceWork)

	no := false
	r, err = svc.CreateVehicleCheck(ctx, ba, ConditionInput{Brake: &no}, "mechanic")
	require.NoError(t, err)
	assert.False(t, r.Brake)
	assert.True(t, r.Battery)
	assert.Equal(t, models.DamagePending, r.Status)
}

func TestVehicleCheckUnknownAssignment(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateVehicleCheck(context.Background(), "BA-404", ConditionInput{}, "mechanic")
	assert.True(t, apperr.IsNotFound(err))
}

func TestAcceptingSpawnsOneWorkOrder(t *testing.T) {
	svc, ba := newService(t)
	ctx := context.Background()
	no := false
	r, err := svc.CreateVehicleCheck(ctx, ba, ConditionInput{Lights: &no, Engine: &no}, "mechanic")
	require.NoError(t, err)

	r, err = svc.UpdateDamageReportStatus(ctx, r.DamageReportID, models.DamageAccepted, "supervisor")
	require.NoError(t, err)
	require.NotNil(t, r.MaintenanceWork)
	first := r.MaintenanceWork.MaintenanceWorkID
	assert.Equal(t, "Repair: Lights, Engine", r.MaintenanceWork.WorkTitle)
	assert.Equal(t, models.WorkPending, r.MaintenanceWork.Status)

	r, err = svc.UpdateDamageReportStatus(ctx, r.DamageReportID, models.DamageAccepted, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, first, r.MaintenanceWork.MaintenanceWorkID)

	works, err := svc.ListMaintenanceWorks(ctx, WorkFilter{})
	require.NoError(t, err)
	assert.Len(t, works, 1)
}

func TestAcceptedOnCreateSpawnsWorkOrder(t *testing.T) {
	svc, ba := newService(t)
	accepted := models.DamageAccepted
	r, err := svc.CreateVehicleCheck(context.Background(), ba, ConditionInput{Status: &accepted}, "mechanic")
	require.NoError(t, err)
	require.NotNil(t, r.MaintenanceWork)
	assert.Equal(t, "General inspection", r.MaintenanceWork.WorkTitle)
}

func TestInvalidDamageStatus(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdateDamageReportStatus(context.Background(), "DR-1", "Fixed", "x")
	assert.True(t, apperr.IsValidation(err))
}

func TestDeriveStatus(t *testing.T) {
	task := func(s models.WorkStatus) models.Task { return models.Task{Status: s} }
	cases := []struct {
		name  string
		tasks []models.Task
		want  models.WorkStatus
	}{
		{"no tasks", nil, models.WorkPending},
		{"all pending", []models.Task{task(models.WorkPending)}, models.WorkPending},
		{"any in progress", []models.Task{task(models.WorkCompleted), task(models.WorkInProgress)}, models.WorkInProgress},
		{"partly done", []models.Task{task(models.WorkCompleted), task(models.WorkPending)}, models.WorkPending},
		{"all done", []models.Task{task(models.WorkCompleted), task(models.WorkCompleted)}, models.WorkCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.tasks))
		})
	}
}

func TestTasksDriveWorkStatus(t *testing.T) {
	svc, ba := newService(t)
	ctx := context.Background()
	accepted := models.DamageAccepted
	r, err := svc.CreateVehicleCheck(ctx, ba, ConditionInput{Status: &accepted}, "mechanic")
	require.NoError(t, err)
	workID := r.MaintenanceWork.MaintenanceWorkID

	// Prime the cached list so the writes below must invalidate it.
	pending, err := svc.ListMaintenanceWorks(ctx, WorkFilter{Status: string(models.WorkPending)})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	inProgress := models.WorkInProgress
	a, err := svc.CreateTask(ctx, workID, TaskInput{
		TaskName: "Replace bulb",
		Status:   &inProgress,
		Tools:    []ToolInput{{ToolName: "Screwdriver", Quantity: 1, Unit: "pc"}},
	}, "mechanic")
	require.NoError(t, err)
	require.Len(t, a.Tools, 1)

	b, err := svc.CreateTask(ctx, workID, TaskInput{TaskName: "Road test"}, "mechanic")
	require.NoError(t, err)

	w, err := svc.GetMaintenanceWork(ctx, workID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkInProgress, w.Status)
	require.NotNil(t, w.DamageReport)
	assert.Len(t, w.Tasks, 2)

	pending, err = svc.ListMaintenanceWorks(ctx, WorkFilter{Status: string(models.WorkPending)})
	require.NoError(t, err)
	assert.Empty(t, pending)

	done := models.WorkCompleted
	tools := []ToolInput{{ToolName: "Multimeter", Quantity: 1}, {ToolName: "Fuse", Quantity: 2, Unit: "pc"}}
	a, err = svc.UpdateTask(ctx, a.TaskID, TaskPatch{Status: &done, Tools: &tools}, "mechanic")
	require.NoError(t, err)
	require.NotNil(t, a.CompletedDate)
	assert.True(t, fixedNow.Equal(*a.CompletedDate))
	assert.Len(t, a.Tools, 2)

	w, err = svc.GetMaintenanceWork(ctx, workID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkPending, w.Status)

	require.NoError(t, svc.DeleteTask(ctx, b.TaskID, "mechanic"))
	w, err = svc.GetMaintenanceWork(ctx, workID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkCompleted, w.Status)

	completed, err := svc.ListMaintenanceWorks(ctx, WorkFilter{Status: string(models.WorkCompleted)})
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestUpdateMaintenanceWork(t *testing.T) {
	svc, ba := newService(t)
	ctx := context.Background()
	accepted := models.DamageAccepted
	r, err := svc.CreateVehicleCheck(ctx, ba, ConditionInput{Status: &accepted}, "mechanic")
	require.NoError(t, err)

	high := models.PriorityHigh
	due := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	p := WorkPatch{Priority: &high}
	p.DueDate.Set, p.DueDate.Ptr = true, &due
	w, err := svc.UpdateMaintenanceWork(ctx, r.MaintenanceWork.MaintenanceWorkID, p, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, w.Priority)
	require.NotNil(t, w.DueDate)
	assert.True(t, due.Equal(*w.DueDate))

	bad := models.Priority("Urgent")
	_, err = svc.UpdateMaintenanceWork(ctx, w.MaintenanceWorkID, WorkPatch{Priority: &bad}, "supervisor")
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.UpdateMaintenanceWork(ctx, "MW-404", WorkPatch{Priority: &high}, "supervisor")
	assert.True(t, apperr.IsNotFound(err))
}
