package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
)

// ErrStateReserved: booked is written only by Claim.
var ErrStateReserved = errors.New("booked is not settable directly")

type ResourceRepo struct {
	db *gorm.DB
}

func NewResourceRepo(db *gorm.DB) *ResourceRepo {
	return &ResourceRepo{db: db}
}

func (r *ResourceRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Resource{})
}

func (r *ResourceRepo) Create(ctx context.Context, res *domain.Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.AvailabilityState == "" {
		res.AvailabilityState = domain.StateAvailable
	}
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *ResourceRepo) ByID(ctx context.Context, id string) (*domain.Resource, error) {
	var res domain.Resource
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepo) List(ctx context.Context, page, size int32, kind domain.ResourceKind) ([]domain.Resource, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Resource{})
	if kind != "" {
		qb = qb.Where("kind = ?", kind)
	}
	var out []domain.Resource
	if err := qb.Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Claim is the only path from available to booked: a single conditional
// UPDATE, race-free across server processes. RowsAffected decides the winner,
// and the winning booking id is recorded so a redelivered claim from the same
// booking still wins after a crash between the claim and its finalize.
func (r *ResourceRepo) Claim(ctx context.Context, id, bookingID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("id = ? AND availability_state = ?", id, domain.StateAvailable).
		Updates(map[string]any{
			"availability_state": domain.StateBooked,
			"booked_by":          bookingID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	cur, err := r.ByID(ctx, id)
	if err != nil {
		return false, err
	}
	return cur.AvailabilityState == domain.StateBooked && cur.BookedBy == bookingID, nil
}

// SetState handles the transitions listing management owns. It refuses to
// write booked: that transition belongs to Claim alone.
func (r *ResourceRepo) SetState(ctx context.Context, id string, to domain.AvailabilityState) (*domain.Resource, error) {
	if to == domain.StateBooked {
		return nil, ErrStateReserved
	}
	res := r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("id = ?", id).
		Updates(map[string]any{"availability_state": to, "booked_by": ""})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.ByID(ctx, id)
}
