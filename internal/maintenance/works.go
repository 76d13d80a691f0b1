package maintenance

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/ids"
	"fleetops/internal/models"
	"fleetops/internal/validation"
)

// WorkFilter narrows ListMaintenanceWorks. Empty fields match everything.
type WorkFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=Pending InProgress Completed"`
	Priority string `form:"priority" binding:"omitempty,oneof=Low Medium High Critical"`
}

func (f WorkFilter) key() cache.Key {
	return cache.NewKey(cache.EntityMaintenance, "status", f.Status, "priority", f.Priority)
}

func (f WorkFilter) Validate() error {
	return validation.Struct(f)
}

// ListMaintenanceWorks returns work orders with their tasks, read through
// the cache under one key per status and priority pair.
func (s *Service) ListMaintenanceWorks(ctx context.Context, f WorkFilter) ([]models.MaintenanceWork, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return cache.ReadThrough(ctx, s.cache, f.key(), func(ctx context.Context) ([]models.MaintenanceWork, error) {
		q := withTasks(s.db.WithContext(ctx))
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Priority != "" {
			q = q.Where("priority = ?", f.Priority)
		}
		var works []models.MaintenanceWork
		if err := q.Order("created_at DESC").Find(&works).Error; err != nil {
			return nil, apperr.FromDB("maintenance work", "", err)
		}
		return works, nil
	})
}

func (s *Service) GetMaintenanceWork(ctx context.Context, id string) (*models.MaintenanceWork, error) {
	var w models.MaintenanceWork
	if err := withTasks(s.db.WithContext(ctx)).First(&w, "maintenance_work_id = ?", id).Error; err != nil {
		return nil, apperr.FromDB("maintenance work", id, err)
	}
	var r models.DamageReport
	if err := s.db.WithContext(ctx).First(&r, "damage_report_id = ?", w.DamageReportID).Error; err == nil {
		w.DamageReport = &r
	}
	return &w, nil
}

func (s *Service) UpdateMaintenanceWork(ctx context.Context, id string, p WorkPatch, actor string) (*models.MaintenanceWork, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_by": actor}
	if p.Priority != nil {
		updates["priority"] = *p.Priority
	}
	if p.WorkTitle != nil {
		updates["work_title"] = *p.WorkTitle
	}
	if p.WorkRemarks.Set {
		updates["work_remarks"] = p.WorkRemarks.Ptr
	}
	if p.DueDate.Set {
		updates["due_date"] = p.DueDate.Ptr
	}
	res := s.db.WithContext(ctx).Model(&models.MaintenanceWork{}).Where("maintenance_work_id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, apperr.FromDB("maintenance work", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("maintenance work", id)
	}
	s.invalidate(ctx)
	return s.GetMaintenanceWork(ctx, id)
}

// CreateTask adds a task and recomputes the work order's status.
func (s *Service) CreateTask(ctx context.Context, workID string, in TaskInput, actor string) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	task := models.Task{
		TaskID:            ids.New(ids.Task),
		MaintenanceWorkID: workID,
		TaskName:          in.TaskName,
		TaskType:          in.TaskType,
		TaskNote:          in.TaskNote,
		Status:            models.WorkPending,
		AssigneeID:        in.AssigneeID,
		HoursSpent:        in.HoursSpent,
		StartDate:         in.StartDate,
		CompletedDate:     in.CompletedDate,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	s.stampCompletion(&task)
	task.Stamp(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockWork(tx, workID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return apperr.FromDB("task", task.TaskID, err)
		}
		if err := replaceTools(tx, task.TaskID, in.Tools); err != nil {
			return err
		}
		return recompute(tx, workID, actor)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.getTask(ctx, task.TaskID)
}

func (s *Service) UpdateTask(ctx context.Context, taskID string, p TaskPatch, actor string) (*models.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Clauses(lockClause(tx)...).First(&task, "task_id = ?", taskID).Error; err != nil {
			return apperr.FromDB("task", taskID, err)
		}
		if p.TaskName != nil {
			task.TaskName = *p.TaskName
		}
		if p.TaskType != nil {
			task.TaskType = *p.TaskType
		}
		if p.TaskNote.Set {
			task.TaskNote = p.TaskNote.Ptr
		}
		if p.Status != nil {
			task.Status = *p.Status
		}
		if p.AssigneeID.Set {
			task.AssigneeID = p.AssigneeID.Ptr
		}
		if p.HoursSpent != nil {
			task.HoursSpent = *p.HoursSpent
		}
		if p.StartDate.Set {
			task.StartDate = p.StartDate.Ptr
		}
		if p.CompletedDate.Set {
			task.CompletedDate = p.CompletedDate.Ptr
		}
		s.stampCompletion(&task)
		task.UpdatedBy = actor
		if err := tx.Omit(clause.Associations).Save(&task).Error; err != nil {
			return apperr.FromDB("task", taskID, err)
		}
		if p.Tools != nil {
			if err := replaceTools(tx, taskID, *p.Tools); err != nil {
				return err
			}
		}
		return recompute(tx, task.MaintenanceWorkID, actor)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.getTask(ctx, taskID)
}

func (s *Service) DeleteTask(ctx context.Context, taskID, actor string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "task_id = ?", taskID).Error; err != nil {
			return apperr.FromDB("task", taskID, err)
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskTool{}).Error; err != nil {
			return apperr.FromDB("task tool", "", err)
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Task{}).Error; err != nil {
			return apperr.FromDB("task", taskID, err)
		}
		return recompute(tx, task.MaintenanceWorkID, actor)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) getTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).Preload("Tools").First(&t, "task_id = ?", id).Error; err != nil {
		return nil, apperr.FromDB("task", id, err)
	}
	return &t, nil
}

// stampCompletion dates a task the moment it is marked Completed.
func (s *Service) stampCompletion(t *models.Task) {
	if t.Status == models.WorkCompleted && t.CompletedDate == nil {
		now := s.now()
		t.CompletedDate = &now
	}
}

// DeriveStatus is Completed when every task is, InProgress when any task
// is, and Pending otherwise. A work order without tasks is Pending.
func DeriveStatus(tasks []models.Task) models.WorkStatus {
	if len(tasks) == 0 {
		return models.WorkPending
	}
	completed := 0
	for _, t := range tasks {
		switch t.Status {
		case models.WorkInProgress:
			return models.WorkInProgress
		case models.WorkCompleted:
			completed++
		}
	}
	if completed == len(tasks) {
		return models.WorkCompleted
	}
	return models.WorkPending
}

func recompute(tx *gorm.DB, workID, actor string) error {
	var tasks []models.Task
	if err := tx.Where("maintenance_work_id = ?", workID).Find(&tasks).Error; err != nil {
		return apperr.FromDB("task", "", err)
	}
	err := tx.Model(&models.MaintenanceWork{}).Where("maintenance_work_id = ?", workID).
		Updates(map[string]interface{}{"status": DeriveStatus(tasks), "updated_by": actor}).Error
	return apperr.FromDB("maintenance work", workID, err)
}

func replaceTools(tx *gorm.DB, taskID string, tools []ToolInput) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskTool{}).Error; err != nil {
		return apperr.FromDB("task tool", "", err)
	}
	for _, t := range tools {
		row := models.TaskTool{
			TaskToolID: ids.New(ids.TaskTool),
			TaskID:     taskID,
			ToolName:   t.ToolName,
			Quantity:   t.Quantity,
			Unit:       t.Unit,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.FromDB("task tool", row.TaskToolID, err)
		}
	}
	return nil
}

func lockWork(tx *gorm.DB, id string) (*models.MaintenanceWork, error) {
	var w models.MaintenanceWork
	if err := tx.Clauses(lockClause(tx)...).First(&w, "maintenance_work_id = ?", id).Error; err != nil {
		return nil, apperr.FromDB("maintenance work", id, err)
	}
	return &w, nil
}

func withTasks(db *gorm.DB) *gorm.DB {
	return db.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Tasks.Tools")
}
