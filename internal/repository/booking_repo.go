package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
)

// ErrVersionConflict means the booking changed under a finalizer; the caller
// must re-read and decide again.
var ErrVersionConflict = errors.New("booking version conflict")

type BookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Booking{})
}

// Record inserts a pending booking keyed by its payment reference, or returns
// the existing row when the reference was seen before. The second return value
// reports whether a new row was created. Safe under concurrent retries: the
// unique index on payment_reference is the backstop, the row lock the fast path.
func (r *BookingRepo) Record(ctx context.Context, b *domain.Booking) (*domain.Booking, bool, error) {
	var out domain.Booking
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&out, "payment_reference = ?", b.PaymentReference).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.Status = domain.BookingPending
		b.Version = 0
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		out = *b
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (r *BookingRepo) ByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) ByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "payment_reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Finalize is the version-guarded status writer: the UPDATE only lands when
// the row still carries expectedVersion, and bumps the version when it does.
func (r *BookingRepo) Finalize(ctx context.Context, id string, expectedVersion int64, to domain.BookingStatus) (*domain.Booking, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{"status": to, "version": expectedVersion + 1})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.ByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrVersionConflict
	}
	return r.ByID(ctx, id)
}

// SweepStalePending cancels pending bookings created before cutoff. One UPDATE
// over all stale rows, version bumped per row so a racing verifier loses its
// CAS instead of resurrecting a cancelled booking.
func (r *BookingRepo) SweepStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("status = ? AND created_at < ?", domain.BookingPending, cutoff).
		Updates(map[string]any{
			"status":  domain.BookingCancelled,
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}
