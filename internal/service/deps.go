package service

import (
	"context"
	"time"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
)

// ResourceStore is the slice of the resource repository the pipeline needs.
// Claim must be a single atomic conditional write in the backing store.
type ResourceStore interface {
	ByID(ctx context.Context, id string) (*domain.Resource, error)
	Claim(ctx context.Context, id, bookingID string) (bool, error)
}

// Ledger is the transactional booking record. Record is idempotent on the
// payment reference; Finalize is version-guarded and returns
// repository.ErrVersionConflict when the guard fails.
type Ledger interface {
	Record(ctx context.Context, b *domain.Booking) (*domain.Booking, bool, error)
	ByID(ctx context.Context, id string) (*domain.Booking, error)
	ByReference(ctx context.Context, reference string) (*domain.Booking, error)
	Finalize(ctx context.Context, id string, expectedVersion int64, to domain.BookingStatus) (*domain.Booking, error)
	SweepStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
