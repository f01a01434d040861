package models

import "context"

// PayoutResult reports the outcome of a single payout attempt. A result is
// never silently coerced to success; anything but a confirmed processor
// acknowledgement is a failure.
type PayoutResult struct {
	// Success is true only when the processor acknowledged the transaction.
	Success bool
	// TransactionID is the processor's identifier for the transaction, set
	// only on success.
	TransactionID string
}

// PayoutService sends accumulated credit to the external payment processor.
type PayoutService interface {
	// Send makes exactly one payout attempt for the full amount. It does not
	// retry and does not deduplicate against previous attempts; the caller
	// must invoke it at most once per earn transaction.
	Send(ctx context.Context, identity string, amountUnits int64) PayoutResult
}
