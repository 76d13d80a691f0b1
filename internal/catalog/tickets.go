package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/cache"
	"fleetops/internal/ids"
	"fleetops/internal/models"
)

// TicketTypeInput creates or reprices a ticket type. TicketTypeID is
// optional on create; fare codes such as "TT-REGULAR" may be chosen by the
// caller.
type TicketTypeInput struct {
	TicketTypeID string          `json:"TicketTypeID"`
	Value        decimal.Decimal `json:"Value"`
}

func (s *Service) CreateTicketType(ctx context.Context, in TicketTypeInput, actor string) (*models.TicketType, error) {
	if !in.Value.IsPositive() {
		return nil, apperr.ValidationError{Field: "Value", Msg: "must be positive"}
	}
	id := strings.TrimSpace(in.TicketTypeID)
	switch {
	case id == "":
		id = ids.New(ids.TicketType)
	case !ids.HasPrefix(id, ids.TicketType):
		return nil, apperr.ValidationError{Field: "TicketTypeID", Msg: "must start with " + ids.TicketType + "-"}
	}
	tt := models.TicketType{TicketTypeID: id, Value: in.Value}
	tt.Stamp(actor)
	if err := s.db.WithContext(ctx).Create(&tt).Error; err != nil {
		return nil, apperr.FromDB("ticket type", id, err)
	}
	s.invalidate(ctx, cache.EntityTicketTypes)
	return &tt, nil
}

func (s *Service) UpdateTicketType(ctx context.Context, id string, value decimal.Decimal, actor string) (*models.TicketType, error) {
	if !value.IsPositive() {
		return nil, apperr.ValidationError{Field: "Value", Msg: "must be positive"}
	}
	var tt models.TicketType
	if err := s.db.WithContext(ctx).First(&tt, "ticket_type_id = ?", id).Error; err != nil {
		return nil, apperr.FromDB("ticket type", id, err)
	}
	tt.Value = value
	tt.UpdatedBy = actor
	if err := s.db.WithContext(ctx).Save(&tt).Error; err != nil {
		return nil, apperr.FromDB("ticket type", id, err)
	}
	s.invalidate(ctx, cache.EntityTicketTypes, cache.EntityAssignments, cache.EntityTrips)
	return &tt, nil
}

// DeleteTicketType removes a ticket type that no trip has issued.
func (s *Service) DeleteTicketType(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.TicketBusTrip{}).Where("ticket_type_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("ticket type", "ticket type has been issued on trips")
		}
		res := tx.Where("ticket_type_id = ?", id).Delete(&models.TicketType{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("ticket type", id)
		}
		return nil
	})
	if err != nil {
		return apperr.FromDB("ticket type", id, err)
	}
	s.invalidate(ctx, cache.EntityTicketTypes)
	return nil
}

func (s *Service) ListTicketTypes(ctx context.Context) ([]models.TicketType, error) {
	return cache.ReadThrough(ctx, s.cache, cache.NewKey(cache.EntityTicketTypes), func(ctx context.Context) ([]models.TicketType, error) {
		var out []models.TicketType
		if err := s.db.WithContext(ctx).Order("value").Find(&out).Error; err != nil {
			return nil, apperr.FromDB("ticket type", "", err)
		}
		return out, nil
	})
}
