package operations

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/apperr"
	"fleetops/internal/ids"
	"fleetops/internal/models"
	"fleetops/internal/quota"
)

// ListQuotaPolicies returns an assignment's policies ordered by start.
func (s *Service) ListQuotaPolicies(ctx context.Context, assignmentID string) ([]models.QuotaPolicy, error) {
	if err := requireRegular(s.db.WithContext(ctx), assignmentID); err != nil {
		return nil, err
	}
	policies, err := loadPolicies(s.db.WithContext(ctx), assignmentID)
	if err != nil {
		return nil, err
	}
	quota.SortByStart(policies)
	return policies, nil
}

// CreateQuotaPolicy adds a policy after checking it does not overlap the
// assignment's existing windows.
func (s *Service) CreateQuotaPolicy(ctx context.Context, assignmentID string, in QuotaPolicyInput, actor string) (*models.QuotaPolicy, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created *models.QuotaPolicy
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRegular(forUpdate(tx), assignmentID); err != nil {
			return err
		}
		existing, err := loadPolicies(tx, assignmentID)
		if err != nil {
			return err
		}
		windows := append(quota.WindowsOf(existing, ""), quota.Window{ID: "new", Start: in.StartDate, End: in.EndDate})
		if err := quota.ValidateNoOverlap(windows); err != nil {
			return err
		}
		created, err = insertPolicy(tx, assignmentID, in, actor)
		return err
	})
	if err != nil {
		return nil, apperr.FromDB("quota policy", "", err)
	}
	s.afterCommit(ctx, "", "", "")
	return created, nil
}

// UpdateQuotaPolicy replaces a policy's window and rule.
func (s *Service) UpdateQuotaPolicy(ctx context.Context, policyID string, in QuotaPolicyInput, actor string) (*models.QuotaPolicy, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated models.QuotaPolicy
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "quota_policy_id = ?", policyID).Error; err != nil {
			return apperr.FromDB("quota policy", policyID, err)
		}
		// Same lock order as CreateQuotaPolicy: parent assignment first.
		if err := requireRegular(forUpdate(tx), updated.RegularBusAssignmentID); err != nil {
			return err
		}
		if err := forUpdate(tx).First(&updated, "quota_policy_id = ?", policyID).Error; err != nil {
			return apperr.FromDB("quota policy", policyID, err)
		}
		existing, err := loadPolicies(tx, updated.RegularBusAssignmentID)
		if err != nil {
			return err
		}
		windows := append(quota.WindowsOf(existing, policyID), quota.Window{ID: policyID, Start: in.StartDate, End: in.EndDate})
		if err := quota.ValidateNoOverlap(windows); err != nil {
			return err
		}

		updated.StartDate = in.StartDate.UTC()
		updated.EndDate = in.EndDate.UTC()
		updated.UpdatedBy = actor
		if err := tx.Omit(clause.Associations).Save(&updated).Error; err != nil {
			return err
		}
		if err := deleteRules(tx, policyID); err != nil {
			return err
		}
		return insertRule(tx, &updated, in)
	})
	if err != nil {
		return nil, apperr.FromDB("quota policy", policyID, err)
	}
	s.afterCommit(ctx, "", "", "")
	return &updated, nil
}

func (s *Service) DeleteQuotaPolicy(ctx context.Context, policyID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("quota_policy_id = ?", policyID).Delete(&models.QuotaPolicy{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("quota policy", policyID)
		}
		return deleteRules(tx, policyID)
	})
	if err != nil {
		return apperr.FromDB("quota policy", policyID, err)
	}
	s.afterCommit(ctx, "", "", "")
	return nil
}

func insertPolicy(tx *gorm.DB, assignmentID string, in QuotaPolicyInput, actor string) (*models.QuotaPolicy, error) {
	p := models.QuotaPolicy{
		QuotaPolicyID:          ids.New(ids.QuotaPolicy),
		RegularBusAssignmentID: assignmentID,
		StartDate:              in.StartDate.UTC(),
		EndDate:                in.EndDate.UTC(),
	}
	p.Stamp(actor)
	if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
		return nil, apperr.FromDB("quota policy", p.QuotaPolicyID, err)
	}
	if err := insertRule(tx, &p, in); err != nil {
		return nil, err
	}
	return &p, nil
}

func insertRule(tx *gorm.DB, p *models.QuotaPolicy, in QuotaPolicyInput) error {
	p.Fixed, p.Percentage = nil, nil
	switch in.QuotaType {
	case "Fixed":
		p.Fixed = &models.FixedQuota{FQuotaPolicyID: p.QuotaPolicyID, Quota: in.QuotaValue}
		return apperr.FromDB("quota policy", p.QuotaPolicyID, tx.Create(p.Fixed).Error)
	case "Percentage":
		p.Percentage = &models.PercentageQuota{PQuotaPolicyID: p.QuotaPolicyID, Percentage: in.QuotaValue}
		return apperr.FromDB("quota policy", p.QuotaPolicyID, tx.Create(p.Percentage).Error)
	}
	return apperr.ValidationError{Field: "QuotaType", Msg: "must be Fixed or Percentage"}
}

func deleteRules(tx *gorm.DB, policyID string) error {
	if err := tx.Where("f_quota_policy_id = ?", policyID).Delete(&models.FixedQuota{}).Error; err != nil {
		return err
	}
	return tx.Where("p_quota_policy_id = ?", policyID).Delete(&models.PercentageQuota{}).Error
}

func loadPolicies(db *gorm.DB, assignmentID string) ([]models.QuotaPolicy, error) {
	var policies []models.QuotaPolicy
	err := db.Preload("Fixed").Preload("Percentage").
		Where("regular_bus_assignment_id = ?", assignmentID).
		Find(&policies).Error
	if err != nil {
		return nil, apperr.FromDB("quota policy", "", err)
	}
	return policies, nil
}

func requireRegular(db *gorm.DB, assignmentID string) error {
	var regs []models.RegularBusAssignment
	err := db.Joins("JOIN bus_assignments ON bus_assignments.bus_assignment_id = regular_bus_assignments.regular_bus_assignment_id").
		Where("regular_bus_assignments.regular_bus_assignment_id = ? AND bus_assignments.is_deleted = ?", assignmentID, false).
		Limit(1).Find(&regs).Error
	if err != nil {
		return apperr.FromDB("regular bus assignment", assignmentID, err)
	}
	if len(regs) == 0 {
		return apperr.NotFound("regular bus assignment", assignmentID)
	}
	return nil
}
