package models

import "context"

// EarnResult is the outcome of an earn attempt or a status query.
type EarnResult struct {
	// WaitingTime is the remaining wait before the next grant. Positive
	// after a fresh grant (the full cooldown) and for blocked attempts.
	WaitingTime float64
	// Balance is the identity's accumulated credit after the request.
	Balance int64
	// Paid is the amount paid out by this request, 0 if no payout happened.
	Paid int64
	// Granted reports whether this request produced a grant.
	Granted bool
	// ClientToken is the fresh sealed last-grant token to hand back to the
	// caller. Empty unless a grant was made.
	ClientToken string
}

// FaucetI is the earn orchestrator.
type FaucetI interface {
	// Earn runs the full gate -> grant -> payout -> record sequence for the
	// identity. clientToken is the caller's sealed token ("" if absent).
	Earn(ctx context.Context, identity, clientToken string) (*EarnResult, error)

	// Status computes the current remaining wait and balance without
	// mutating any state. identity may be empty, in which case only the
	// client token is consulted.
	Status(ctx context.Context, identity, clientToken string) (*EarnResult, error)
}
