// Package catalog maintains the reference data operations depend on: routes
// with their ordered stops, stops, and ticket types.
package catalog

import (
	"context"

	"gorm.io/gorm"

	"fleetops/internal/cache"
)

type Service struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewService(db *gorm.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

func (s *Service) invalidate(ctx context.Context, entities ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, entities...)
	}
}
