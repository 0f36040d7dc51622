package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
)

// SessionSvc starts a payment attempt: it snapshots the fee and writes the
// pending booking row that anchors the rest of the pipeline. No external
// calls happen here; the gateway session is opened afterwards with the
// reference this returns.
type SessionSvc struct {
	resources ResourceStore
	ledger    Ledger
}

func NewSessionSvc(resources ResourceStore, ledger Ledger) *SessionSvc {
	return &SessionSvc{resources: resources, ledger: ledger}
}

type SessionInfo struct {
	Reference  string
	ResourceID string
	Amount     int64
	Currency   string
}

// CreateSession validates the resource and contact channel, generates the
// payment reference when the caller did not supply one, and records the
// pending booking. The reference is the idempotency key for the whole
// attempt and must not collide with another attempt's.
func (s *SessionSvc) CreateSession(ctx context.Context, resourceID, contactChannel, reference string) (*SessionInfo, error) {
	if resourceID == "" {
		return nil, fmt.Errorf("%w: resource_id is required", ErrValidation)
	}
	if contactChannel == "" {
		return nil, fmt.Errorf("%w: contact_channel is required", ErrValidation)
	}

	res, err := s.resources.ByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resource %s not found", ErrUnavailable, resourceID)
		}
		return nil, err
	}
	if res.AvailabilityState != domain.StateAvailable {
		return nil, fmt.Errorf("%w: resource is %s", ErrUnavailable, res.AvailabilityState)
	}

	if reference == "" {
		reference = uuid.NewString()
	}

	b := &domain.Booking{
		ResourceID:       res.ID,
		ResourceKind:     res.Kind,
		PaymentReference: reference,
		Amount:           res.BookingFee,
		Currency:         res.Currency,
		ContactChannel:   contactChannel,
	}
	rec, created, err := s.ledger.Record(ctx, b)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateReference, reference)
	}

	return &SessionInfo{
		Reference:  rec.PaymentReference,
		ResourceID: rec.ResourceID,
		Amount:     rec.Amount,
		Currency:   rec.Currency,
	}, nil
}
