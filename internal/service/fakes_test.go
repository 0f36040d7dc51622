package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/repository"
)

// memResources implements ResourceStore with the same conditional-claim
// contract as the SQL repository: exactly one claimant flips available to
// booked.
type memResources struct {
	mu sync.Mutex
	m  map[string]*domain.Resource
}

func newMemResources(rs ...*domain.Resource) *memResources {
	s := &memResources{m: map[string]*domain.Resource{}}
	for _, r := range rs {
		cp := *r
		s.m[r.ID] = &cp
	}
	return s
}

func (s *memResources) ByID(_ context.Context, id string) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memResources) Claim(_ context.Context, id, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if r.AvailabilityState == domain.StateBooked && r.BookedBy == bookingID {
		return true, nil
	}
	if r.AvailabilityState != domain.StateAvailable {
		return false, nil
	}
	r.AvailabilityState = domain.StateBooked
	r.BookedBy = bookingID
	return true, nil
}

func (s *memResources) state(id string) domain.AvailabilityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[id].AvailabilityState
}

// memLedger implements Ledger with reference idempotency and version CAS.
type memLedger struct {
	mu    sync.Mutex
	seq   int
	byID  map[string]*domain.Booking
	byRef map[string]*domain.Booking
}

func newMemLedger() *memLedger {
	return &memLedger{byID: map[string]*domain.Booking{}, byRef: map[string]*domain.Booking{}}
}

func (l *memLedger) Record(_ context.Context, b *domain.Booking) (*domain.Booking, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.byRef[b.PaymentReference]; ok {
		cp := *cur
		return &cp, false, nil
	}
	l.seq++
	nb := *b
	nb.ID = fmt.Sprintf("bk-%03d", l.seq)
	nb.Status = domain.BookingPending
	nb.Version = 0
	nb.CreatedAt = time.Now().UTC()
	nb.UpdatedAt = nb.CreatedAt
	l.byID[nb.ID] = &nb
	l.byRef[nb.PaymentReference] = &nb
	cp := nb
	return &cp, true, nil
}

func (l *memLedger) ByID(_ context.Context, id string) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *memLedger) ByReference(_ context.Context, ref string) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byRef[ref]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *memLedger) Finalize(_ context.Context, id string, expectedVersion int64, to domain.BookingStatus) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if b.Version != expectedVersion {
		return nil, repository.ErrVersionConflict
	}
	b.Status = to
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (l *memLedger) SweepStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, b := range l.byID {
		if b.Status == domain.BookingPending && b.CreatedAt.Before(cutoff) {
			b.Status = domain.BookingCancelled
			b.Version++
			n++
		}
	}
	return n, nil
}

func (l *memLedger) backdate(ref string, to time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byRef[ref].CreatedAt = to
}

// fakeGateway serves canned transactions and can inject transient failures
// before answering.
type fakeGateway struct {
	mu        sync.Mutex
	tx        map[string]gateway.Transaction
	failFirst int
	calls     int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{tx: map[string]gateway.Transaction{}}
}

func (g *fakeGateway) settle(ref string, status gateway.Status, amount int64, currency string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tx[ref] = gateway.Transaction{Reference: ref, Status: status, Amount: amount, Currency: currency}
}

func (g *fakeGateway) Initialize(_ context.Context, req gateway.InitializeRequest) (*gateway.Session, error) {
	return &gateway.Session{Reference: req.Reference, AccessCode: "AC_test", AuthorizationURL: "https://checkout.test/" + req.Reference}, nil
}

func (g *fakeGateway) Verify(_ context.Context, ref string) (*gateway.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failFirst > 0 {
		g.failFirst--
		return nil, errors.New("gateway timeout")
	}
	tx, ok := g.tx[ref]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := tx
	return &cp, nil
}

// memPublisher records everything published.
type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Key     string
	Payload any
}

func (p *memPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Key: key, Payload: v})
	return nil
}

func (p *memPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Key)
	}
	return out
}
