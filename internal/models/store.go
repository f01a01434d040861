package models

import "context"

// Store is the shared TTL key-value store holding the per-identity earn
// records and balances.
type Store interface {
	// EarnToken returns the sealed last-grant token for the identity, or ""
	// if no record exists.
	EarnToken(ctx context.Context, identity string) (string, error)
	// SetEarnToken stores the sealed last-grant token with the earn record
	// retention.
	SetEarnToken(ctx context.Context, identity, token string) error

	// Balance returns the accumulated credit for the identity, or 0 if no
	// record exists.
	Balance(ctx context.Context, identity string) (int64, error)
	// IncrementBalance atomically adds amount to the identity's balance,
	// refreshes the balance retention and returns the new value.
	IncrementBalance(ctx context.Context, identity string, amount int64) (int64, error)
	// ClearBalance removes the balance record entirely.
	ClearBalance(ctx context.Context, identity string) error

	Close() error
}
