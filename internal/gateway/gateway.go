package gateway

import (
	"context"
	"errors"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// Transaction is the gateway's authoritative record for one reference.
// Amount is in minor currency units.
type Transaction struct {
	Reference string
	Status    Status
	Amount    int64
	Currency  string
}

type Session struct {
	Reference        string
	AccessCode       string
	AuthorizationURL string
}

type InitializeRequest struct {
	Reference string
	Amount    int64
	Currency  string
	Metadata  map[string]string
}

// ErrNotFound: the gateway has never seen this reference.
var ErrNotFound = errors.New("gateway: transaction not found")

// Client talks to the external payment gateway. Verify is the authoritative
// lookup by merchant reference; client-reported callbacks are never trusted
// on their own.
type Client interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Session, error)
	Verify(ctx context.Context, reference string) (*Transaction, error)
}
