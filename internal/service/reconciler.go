package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
)

// Reconciler runs the full pipeline for one callback: record the attempt
// under its reference, verify against the gateway, then claim the resource.
// Every step is idempotent, so at-least-once delivery is safe.
type Reconciler struct {
	resources   ResourceStore
	ledger      Ledger
	verifier    *Verifier
	coordinator *Coordinator
}

func NewReconciler(resources ResourceStore, ledger Ledger, verifier *Verifier, coordinator *Coordinator) *Reconciler {
	return &Reconciler{resources: resources, ledger: ledger, verifier: verifier, coordinator: coordinator}
}

type ProcessInput struct {
	Reference      string
	ResourceID     string
	Amount         int64
	ContactChannel string
}

type ProcessResult struct {
	Booking *domain.Booking
	Outcome Outcome // set only when a claim ran
}

// Process returns the booking's settled state. Sentinel errors classify the
// outcome for the caller: ErrAlreadyProcessed (replay), ErrAmountMismatch
// (disputed), ErrPaymentFailed (stays pending), ErrVerification (retry
// later), ErrValidation (drop).
func (r *Reconciler) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	if in.Reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrValidation)
	}
	if in.ResourceID == "" {
		return nil, fmt.Errorf("%w: resource_id is required", ErrValidation)
	}
	if in.ContactChannel == "" {
		return nil, fmt.Errorf("%w: contact_channel is required", ErrValidation)
	}

	res, err := r.resources.ByID(ctx, in.ResourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resource %s not found", ErrValidation, in.ResourceID)
		}
		return nil, err
	}

	b, _, err := r.ledger.Record(ctx, &domain.Booking{
		ResourceID:       res.ID,
		ResourceKind:     res.Kind,
		PaymentReference: in.Reference,
		Amount:           in.Amount,
		Currency:         res.Currency,
		ContactChannel:   in.ContactChannel,
	})
	if err != nil {
		return nil, err
	}

	vb, err := r.verifier.Verify(ctx, b.PaymentReference)
	if err != nil {
		return &ProcessResult{Booking: vb}, err
	}
	if vb.Status != domain.BookingPaid {
		return &ProcessResult{Booking: vb}, nil
	}

	outcome, fb, err := r.coordinator.Claim(ctx, vb)
	if err != nil {
		return &ProcessResult{Booking: fb}, err
	}
	return &ProcessResult{Booking: fb, Outcome: outcome}, nil
}
