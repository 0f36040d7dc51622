package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/repository"
)

type Outcome string

const (
	Won  Outcome = "won"
	Lost Outcome = "lost"
)

// Coordinator resolves races for a resource. The conditional write in
// ResourceStore.Claim is the sole serialization point: exactly one of N
// concurrent claimants sees it succeed.
type Coordinator struct {
	resources ResourceStore
	ledger    Ledger
	pub       Publisher
}

func NewCoordinator(resources ResourceStore, ledger Ledger, pub Publisher) *Coordinator {
	return &Coordinator{resources: resources, ledger: ledger, pub: pub}
}

// Claim promotes the winner to confirmed and demotes losers to
// refund_pending, emitting the compensation event for the admin handoff.
// The booking must be paid and carry the version the caller last observed.
func (c *Coordinator) Claim(ctx context.Context, b *domain.Booking) (Outcome, *domain.Booking, error) {
	if b.Status != domain.BookingPaid {
		return "", b, fmt.Errorf("claim requires a paid booking, got %s", b.Status)
	}

	won, err := c.resources.Claim(ctx, b.ResourceID, b.ID)
	if err != nil {
		return "", b, err
	}

	if won {
		fb, err := c.finalizeFrom(ctx, b, domain.BookingConfirmed)
		if err != nil {
			return "", fb, err
		}
		c.publish(ctx, events.RKBookingConfirmed, events.BookingConfirmed{
			BookingID:  fb.ID,
			Reference:  fb.PaymentReference,
			ResourceID: fb.ResourceID,
		})
		return Won, fb, nil
	}

	fb, err := c.finalizeFrom(ctx, b, domain.BookingRefundPending)
	if err != nil {
		return "", fb, err
	}
	c.publish(ctx, events.RKBookingRefundRequested, events.RefundRequested{
		BookingID:      fb.ID,
		Reference:      fb.PaymentReference,
		ResourceID:     fb.ResourceID,
		Amount:         fb.Amount,
		Currency:       fb.Currency,
		ContactChannel: fb.ContactChannel,
	})
	return Lost, fb, nil
}

// finalizeFrom mirrors the verifier's conflict handling: a redelivered claim
// finds the booking already settled and adopts that outcome.
func (c *Coordinator) finalizeFrom(ctx context.Context, b *domain.Booking, to domain.BookingStatus) (*domain.Booking, error) {
	fb, err := c.ledger.Finalize(ctx, b.ID, b.Version, to)
	if err == nil {
		return fb, nil
	}
	if !errors.Is(err, repository.ErrVersionConflict) {
		return b, err
	}
	cur, rerr := c.ledger.ByID(ctx, b.ID)
	if rerr != nil {
		return b, rerr
	}
	if cur.Status == to {
		return cur, nil
	}
	return cur, fmt.Errorf("booking %s moved to %s concurrently: %w", b.ID, cur.Status, err)
}

func (c *Coordinator) publish(ctx context.Context, key string, payload any) {
	if c.pub == nil {
		return
	}
	if err := c.pub.PublishJSON(ctx, key, payload); err != nil {
		log.Printf("[coordinator] publish %s error: %v", key, err)
	}
}
