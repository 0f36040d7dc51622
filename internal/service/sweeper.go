package service

import (
	"context"
	"log"
	"time"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
)

// Sweeper cancels pending bookings that never saw a payment, so an abandoned
// attempt cannot keep a resource unclaimable. It is the only writer of the
// pending -> cancelled transition.
type Sweeper struct {
	ledger   Ledger
	pub      Publisher
	timeout  time.Duration
	interval time.Duration
}

func NewSweeper(ledger Ledger, pub Publisher, timeout, interval time.Duration) *Sweeper {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{ledger: ledger, pub: pub, timeout: timeout, interval: interval}
}

// Sweep runs one pass and reports how many bookings it cancelled.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.timeout)
	n, err := s.ledger.SweepStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[sweeper] cancelled %d stale pending bookings", n)
		if s.pub != nil {
			if perr := s.pub.PublishJSON(ctx, events.RKBookingCancelled, events.BookingsCancelled{
				Count:  n,
				Cutoff: cutoff.Format(time.RFC3339),
			}); perr != nil {
				log.Printf("[sweeper] publish %s error: %v", events.RKBookingCancelled, perr)
			}
		}
	}
	return n, nil
}

// Run sweeps on a ticker until the context ends.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("[sweeper] sweep error: %v", err)
			}
		}
	}
}
