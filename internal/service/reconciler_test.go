package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
)

func newPipeline(resources *memResources, ledger *memLedger, gw *fakeGateway, pub *memPublisher) *Reconciler {
	verifier := NewVerifier(ledger, resources, gw, pub, 3, time.Millisecond)
	coordinator := NewCoordinator(resources, ledger, pub)
	return NewReconciler(resources, ledger, verifier, coordinator)
}

func TestProcessConfirmsSinglePayer(t *testing.T) {
	resources := newMemResources(testResource("res-1"))
	ledger := newMemLedger()
	gw := newFakeGateway()
	gw.settle("ref-1", gateway.StatusSuccess, 15000, "GHS")
	rec := newPipeline(resources, ledger, gw, &memPublisher{})

	res, err := rec.Process(context.Background(), ProcessInput{
		Reference:      "ref-1",
		ResourceID:     "res-1",
		Amount:         15000,
		ContactChannel: "guest@example.com",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Outcome != Won {
		t.Fatalf("outcome = %s, want won", res.Outcome)
	}
	if res.Booking.Status != domain.BookingConfirmed {
		t.Fatalf("status = %s, want confirmed", res.Booking.Status)
	}
	if st := resources.state("res-1"); st != domain.StateBooked {
		t.Fatalf("resource state = %s, want booked", st)
	}
}

// Two guests pay for the same room before either callback lands. Both
// payments verify, one booking confirms, the other goes to compensation.
func TestProcessTwoPayersOneRoom(t *testing.T) {
	resources := newMemResources(testResource("res-1"))
	ledger := newMemLedger()
	gw := newFakeGateway()
	gw.settle("ref-a", gateway.StatusSuccess, 15000, "GHS")
	gw.settle("ref-b", gateway.StatusSuccess, 15000, "GHS")
	rec := newPipeline(resources, ledger, gw, &memPublisher{})

	var wg sync.WaitGroup
	results := make([]*ProcessResult, 2)
	errs := make([]error, 2)
	for i, ref := range []string{"ref-a", "ref-b"} {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			results[i], errs[i] = rec.Process(context.Background(), ProcessInput{
				Reference:      ref,
				ResourceID:     "res-1",
				Amount:         15000,
				ContactChannel: fmt.Sprintf("guest%d@example.com", i),
			})
		}(i, ref)
	}
	wg.Wait()

	var confirmed, refundPending int
	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("payer %d: %v", i, errs[i])
		}
		switch results[i].Booking.Status {
		case domain.BookingConfirmed:
			confirmed++
		case domain.BookingRefundPending:
			refundPending++
		}
	}
	if confirmed != 1 || refundPending != 1 {
		t.Fatalf("confirmed=%d refund_pending=%d, want 1 and 1", confirmed, refundPending)
	}
}

func TestProcessReplayedCallback(t *testing.T) {
	resources := newMemResources(testResource("res-1"))
	ledger := newMemLedger()
	gw := newFakeGateway()
	gw.settle("ref-1", gateway.StatusSuccess, 15000, "GHS")
	rec := newPipeline(resources, ledger, gw, &memPublisher{})

	in := ProcessInput{Reference: "ref-1", ResourceID: "res-1", Amount: 15000, ContactChannel: "guest@example.com"}
	if _, err := rec.Process(context.Background(), in); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	res, err := rec.Process(context.Background(), in)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("replay: got %v, want ErrAlreadyProcessed", err)
	}
	if res.Booking.Status != domain.BookingConfirmed {
		t.Fatalf("replay surfaced %s, want the recorded confirmed outcome", res.Booking.Status)
	}
}

func TestProcessValidation(t *testing.T) {
	rec := newPipeline(newMemResources(testResource("res-1")), newMemLedger(), newFakeGateway(), &memPublisher{})

	cases := []ProcessInput{
		{ResourceID: "res-1", ContactChannel: "a@b.c"},
		{Reference: "ref-1", ContactChannel: "a@b.c"},
		{Reference: "ref-1", ResourceID: "res-1"},
		{Reference: "ref-1", ResourceID: "res-missing", ContactChannel: "a@b.c"},
	}
	for i, in := range cases {
		if _, err := rec.Process(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: got %v, want ErrValidation", i, err)
		}
	}
}
