package school

import (
	"context"

	"github.com/google/uuid"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// Repository persists schools. Soft-deleted schools are never returned.
type Repository interface {
	// FindByID returns shared.ErrNotFound when the school is absent or deleted
	FindByID(ctx context.Context, id uuid.UUID) (*School, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]School, int64, error)
	Create(ctx context.Context, s *School) error
	// SaveWithLock updates using optimistic locking on Version and returns
	// shared.ErrConcurrencyConflict when the row changed since it was read
	SaveWithLock(ctx context.Context, s *School) error
	// UpdateStatus writes status only when the stored value differs.
	// It reports whether a row was changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, status SubscriptionStatus) (bool, error)
}
