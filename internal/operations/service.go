// Package operations runs the regular bus assignment lifecycle: the
// readiness and dispatch gates, the latest-trip ledger, ticket ranges, quota
// policies and the bulk trip bookkeeping flags.
package operations

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetops/internal/cache"
	"fleetops/internal/feed"
	"fleetops/internal/registry"
)

// Service owns every write to bus assignments, trips and quota policies.
type Service struct {
	db        *gorm.DB
	cache     *cache.Cache
	feed      feed.Publisher
	directory *registry.Directory
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, c *cache.Cache, pub feed.Publisher, dir *registry.Directory, opts ...Option) *Service {
	s := &Service{
		db:        db,
		cache:     c,
		feed:      pub,
		directory: dir,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// afterCommit invalidates derived caches and announces the new status.
// extra names read models beyond the operations set that the write touched.
func (s *Service) afterCommit(ctx context.Context, assignmentID, eventType, status string, extra ...string) {
	if s.cache != nil {
		entities := make([]string, 0, len(cache.OperationsEntities)+len(extra))
		entities = append(entities, cache.OperationsEntities...)
		s.cache.Invalidate(ctx, append(entities, extra...)...)
	}
	if s.feed != nil && assignmentID != "" {
		s.feed.Publish(feed.Event{
			Topic:           feed.TopicOperations,
			Type:            eventType,
			BusAssignmentID: assignmentID,
			Status:          status,
			At:              s.now(),
		})
	}
}

// forUpdate row-locks the selected rows on engines that support it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
