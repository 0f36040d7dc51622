package service

import "errors"

var (
	// ErrValidation: missing or malformed input; never retried.
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable: the resource cannot take a session right now.
	ErrUnavailable = errors.New("resource unavailable")
	// ErrDuplicateReference: the payment reference already names another attempt.
	ErrDuplicateReference = errors.New("payment reference already used")
	// ErrUnknownReference: no booking recorded for the reference.
	ErrUnknownReference = errors.New("unknown payment reference")
	// ErrAlreadyProcessed: the booking is terminal; the prior outcome stands.
	// Not a failure, callers surface it as a replay.
	ErrAlreadyProcessed = errors.New("already processed")
	// ErrVerification: the gateway could not be reached or has not settled
	// the transaction yet; retryable, the booking stays pending.
	ErrVerification = errors.New("verification failed")
	// ErrNoTransaction: the gateway has never seen the reference. Not
	// retryable; redelivery cannot make the transaction appear.
	ErrNoTransaction = errors.New("no gateway transaction for reference")
	// ErrAmountMismatch: paid amount differs from the booking fee; the
	// booking is disputed and never auto-confirmed.
	ErrAmountMismatch = errors.New("amount mismatch")
	// ErrPaymentFailed: the gateway settled the transaction as failed.
	ErrPaymentFailed = errors.New("payment failed")
)
