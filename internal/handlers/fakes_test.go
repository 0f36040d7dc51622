package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/repository"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubResources and stubLedger mirror the SQL repositories' contracts so the
// full pipeline can run behind the handlers without a database.
type stubResources struct {
	mu sync.Mutex
	m  map[string]*domain.Resource
}

func newStubResources(rs ...*domain.Resource) *stubResources {
	s := &stubResources{m: map[string]*domain.Resource{}}
	for _, r := range rs {
		cp := *r
		s.m[r.ID] = &cp
	}
	return s
}

func (s *stubResources) ByID(_ context.Context, id string) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *stubResources) Claim(_ context.Context, id, bookingID string) (bool, error) {
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

type stubLedger struct {
	mu    sync.Mutex
	seq   int
	byID  map[string]*domain.Booking
	byRef map[string]*domain.Booking
}

func newStubLedger() *stubLedger {
	return &stubLedger{byID: map[string]*domain.Booking{}, byRef: map[string]*domain.Booking{}}
}

func (l *stubLedger) Record(_ context.Context, b *domain.Booking) (*domain.Booking, bool, error) {
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
	l.byID[nb.ID] = &nb
	l.byRef[nb.PaymentReference] = &nb
	cp := nb
	return &cp, true, nil
}

func (l *stubLedger) ByID(_ context.Context, id string) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *stubLedger) ByReference(_ context.Context, ref string) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byRef[ref]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *stubLedger) Finalize(_ context.Context, id string, expectedVersion int64, to domain.BookingStatus) (*domain.Booking, error) {
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
	cp := *b
	return &cp, nil
}

func (l *stubLedger) SweepStalePending(_ context.Context, cutoff time.Time) (int64, error) {
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

type stubGateway struct {
	mu      sync.Mutex
	tx      map[string]gateway.Transaction
	verify  error
	initErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{tx: map[string]gateway.Transaction{}}
}

func (g *stubGateway) settle(ref string, status gateway.Status, amount int64, currency string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tx[ref] = gateway.Transaction{Reference: ref, Status: status, Amount: amount, Currency: currency}
}

func (g *stubGateway) Initialize(_ context.Context, req gateway.InitializeRequest) (*gateway.Session, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.Session{Reference: req.Reference, AccessCode: "AC_test", AuthorizationURL: "https://checkout.test/" + req.Reference}, nil
}

func (g *stubGateway) Verify(_ context.Context, ref string) (*gateway.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verify != nil {
		return nil, g.verify
	}
	tx, ok := g.tx[ref]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := tx
	return &cp, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishJSON(context.Context, string, any) error { return nil }

func availableRoom(id string) *domain.Resource {
	return &domain.Resource{
		ID:                id,
		Name:              "Sunrise Room 4",
		Kind:              domain.KindRoom,
		BookingFee:        15000,
		Currency:          "GHS",
		AvailabilityState: domain.StateAvailable,
	}
}

func newReconciler(resources *stubResources, ledger *stubLedger, gw *stubGateway) *service.Reconciler {
	verifier := service.NewVerifier(ledger, resources, gw, nopPublisher{}, 3, time.Millisecond)
	coordinator := service.NewCoordinator(resources, ledger, nopPublisher{})
	return service.NewReconciler(resources, ledger, verifier, coordinator)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
