package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/repository"
)

// Verifier settles a booking's payment against the gateway's authoritative
// record. Callbacks only trigger it; the gateway lookup decides.
type Verifier struct {
	ledger    Ledger
	resources ResourceStore
	gw        gateway.Client
	pub       Publisher

	attempts int
	backoff  time.Duration
}

func NewVerifier(ledger Ledger, resources ResourceStore, gw gateway.Client, pub Publisher, attempts int, backoff time.Duration) *Verifier {
	if attempts <= 0 {
		attempts = 3
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Verifier{ledger: ledger, resources: resources, gw: gw, pub: pub, attempts: attempts, backoff: backoff}
}

// Verify is safe to call any number of times for the same reference. Terminal
// bookings return the recorded outcome with ErrAlreadyProcessed; a booking
// already paid passes through unchanged so the claim can proceed.
func (v *Verifier) Verify(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := v.ledger.ByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownReference, reference)
		}
		return nil, err
	}
	if b.Status.Terminal() {
		return b, ErrAlreadyProcessed
	}
	if b.Status == domain.BookingPaid {
		return b, nil
	}

	tx, err := v.lookup(ctx, reference)
	if err != nil {
		return b, err
	}
	switch tx.Status {
	case gateway.StatusFailed:
		// Stays pending; the sweeper converts abandonment into cancelled.
		return b, ErrPaymentFailed
	case gateway.StatusPending:
		return b, fmt.Errorf("%w: gateway has not settled %s yet", ErrVerification, reference)
	}

	res, err := v.resources.ByID(ctx, b.ResourceID)
	if err != nil {
		return b, err
	}

	if tx.Amount != res.BookingFee || !strings.EqualFold(tx.Currency, res.Currency) {
		fb, err := v.finalizeFrom(ctx, b, domain.BookingDisputed)
		if err != nil {
			return fb, err
		}
		v.publish(ctx, events.RKBookingDisputed, events.BookingDisputed{
			BookingID:      fb.ID,
			Reference:      fb.PaymentReference,
			ResourceID:     fb.ResourceID,
			PaidAmount:     tx.Amount,
			ExpectedAmount: res.BookingFee,
			Currency:       res.Currency,
		})
		return fb, ErrAmountMismatch
	}

	return v.finalizeFrom(ctx, b, domain.BookingPaid)
}

// lookup retries transient gateway failures with bounded exponential backoff.
func (v *Verifier) lookup(ctx context.Context, reference string) (*gateway.Transaction, error) {
	var (
		tx    *gateway.Transaction
		err   error
		delay = v.backoff
	)
	for i := 0; i < v.attempts; i++ {
		tx, err = v.gw.Verify(ctx, reference)
		if err == nil || errors.Is(err, gateway.ErrNotFound) {
			break
		}
		if i == v.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoTransaction, reference)
		}
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return tx, nil
}

// finalizeFrom applies the CAS transition from the version the caller
// observed. On conflict it re-reads once: another finalizer got there first
// and its outcome stands.
func (v *Verifier) finalizeFrom(ctx context.Context, b *domain.Booking, to domain.BookingStatus) (*domain.Booking, error) {
	fb, err := v.ledger.Finalize(ctx, b.ID, b.Version, to)
	if err == nil {
		return fb, nil
	}
	if !errors.Is(err, repository.ErrVersionConflict) {
		return b, err
	}
	cur, rerr := v.ledger.ByID(ctx, b.ID)
	if rerr != nil {
		return b, rerr
	}
	if cur.Status.Terminal() {
		return cur, ErrAlreadyProcessed
	}
	if cur.Status == to {
		return cur, nil
	}
	return cur, fmt.Errorf("booking %s moved to %s concurrently: %w", b.ID, cur.Status, err)
}

func (v *Verifier) publish(ctx context.Context, key string, payload any) {
	if v.pub == nil {
		return
	}
	if err := v.pub.PublishJSON(ctx, key, payload); err != nil {
		log.Printf("[verifier] publish %s error: %v", key, err)
	}
}
