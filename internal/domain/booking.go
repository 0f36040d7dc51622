package domain

import "time"

type BookingStatus string

const (
	BookingPending       BookingStatus = "pending"
	BookingPaid          BookingStatus = "paid"
	BookingConfirmed     BookingStatus = "confirmed"
	BookingRefundPending BookingStatus = "refund_pending"
	BookingRefunded      BookingStatus = "refunded"
	BookingDisputed      BookingStatus = "disputed"
	BookingCancelled     BookingStatus = "cancelled"
)

// Terminal reports whether no further automatic transition may touch the
// booking. refund_pending is not terminal: manual compensation still has to
// move it to refunded.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingConfirmed, BookingRefunded, BookingDisputed, BookingCancelled:
		return true
	}
	return false
}

// Booking is one payment attempt against one Resource. PaymentReference is
// globally unique and doubles as the idempotency key for the whole pipeline.
// Version is the optimistic-concurrency token; every status write must pass
// the version it last observed.
type Booking struct {
	ID               string       `gorm:"primaryKey"`
	ResourceID       string       `gorm:"index"`
	ResourceKind     ResourceKind
	PaymentReference string `gorm:"uniqueIndex"`
	Amount           int64
	Currency         string
	ContactChannel   string
	Status           BookingStatus `gorm:"index"`
	Version          int64
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}
