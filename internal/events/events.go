package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys on the booking exchange.
const (
	// PaymentCallback is the untrusted gateway callback, enqueued by the
	// webhook endpoint and consumed at-least-once by the reconciler.
	RKPaymentCallback = "payment.callback"

	RKBookingConfirmed       = "booking.confirmed"
	RKBookingRefundRequested = "booking.refund_requested"
	RKBookingDisputed        = "booking.disputed"
	RKBookingCancelled       = "booking.cancelled"
)

// PaymentCallback carries what the gateway reported. ReportedStatus is a
// trigger only; the verifier re-confirms against the gateway before any state
// is written.
type PaymentCallback struct {
	Reference      string `json:"reference"`
	ResourceID     string `json:"resource_id"`
	Amount         int64  `json:"amount"`
	ContactChannel string `json:"contact_channel"`
	ReportedStatus string `json:"reported_status"`
}

type BookingConfirmed struct {
	BookingID  string `json:"booking_id"`
	Reference  string `json:"reference"`
	ResourceID string `json:"resource_id"`
}

// RefundRequested is the compensation event for a lost claim: the payment
// went through but another booking took the resource first.
type RefundRequested struct {
	BookingID      string `json:"booking_id"`
	Reference      string `json:"reference"`
	ResourceID     string `json:"resource_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	ContactChannel string `json:"contact_channel"`
}

type BookingDisputed struct {
	BookingID      string `json:"booking_id"`
	Reference      string `json:"reference"`
	ResourceID     string `json:"resource_id"`
	PaidAmount     int64  `json:"paid_amount"`
	ExpectedAmount int64  `json:"expected_amount"`
	Currency       string `json:"currency"`
}

// BookingsCancelled summarises one sweeper pass.
type BookingsCancelled struct {
	Count  int64  `json:"count"`
	Cutoff string `json:"cutoff"` // RFC3339
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
