package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/bitfaucet/faucet/pkg/logger"
)

const (
	testEarnTTL    = 24 * time.Hour
	testBalanceTTL = 30 * 24 * time.Hour
	testIdentity   = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	log, err := logger.NewLogger(true)
	require.NoError(t, err)

	s, err := NewRedisStore(mr.Addr(), "", 0, testEarnTTL, testBalanceTTL, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s.(*RedisStore), mr
}

func TestEarnTokenRoundTrip(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	tok, err := s.EarnToken(ctx, testIdentity)
	require.NoError(t, err)
	require.Empty(t, tok)

	require.NoError(t, s.SetEarnToken(ctx, testIdentity, "sealed-token"))

	tok, err = s.EarnToken(ctx, testIdentity)
	require.NoError(t, err)
	require.Equal(t, "sealed-token", tok)

	require.Equal(t, testEarnTTL, mr.TTL(EarnTimeKey(testIdentity)))
}

func TestEarnTokenExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetEarnToken(ctx, testIdentity, "sealed-token"))
	mr.FastForward(testEarnTTL + time.Second)

	tok, err := s.EarnToken(ctx, testIdentity)
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestBalanceDefaultsToZero(t *testing.T) {
	s, _ := newTestStore(t)

	balance, err := s.Balance(context.Background(), testIdentity)
	require.NoError(t, err)
	require.EqualValues(t, 0, balance)
}

func TestIncrementBalance(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		balance, err := s.IncrementBalance(ctx, testIdentity, 1)
		require.NoError(t, err)
		require.Equal(t, i, balance)
	}

	balance, err := s.Balance(ctx, testIdentity)
	require.NoError(t, err)
	require.EqualValues(t, 3, balance)

	require.Equal(t, testBalanceTTL, mr.TTL(BalanceKey(testIdentity)))
}

func TestBalanceResetsCorruptedValue(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(BalanceKey(testIdentity), "certainly not a number"))

	balance, err := s.Balance(ctx, testIdentity)
	require.NoError(t, err)
	require.EqualValues(t, 0, balance)

	// The corrupted entry is gone.
	require.False(t, mr.Exists(BalanceKey(testIdentity)))
}

func TestIncrementBalanceResetsCorruptedValue(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(BalanceKey(testIdentity), "certainly not a number"))

	balance, err := s.IncrementBalance(ctx, testIdentity, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, balance)
}

func TestClearBalance(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.IncrementBalance(ctx, testIdentity, 100)
	require.NoError(t, err)

	require.NoError(t, s.ClearBalance(ctx, testIdentity))

	require.False(t, mr.Exists(BalanceKey(testIdentity)))
	balance, err := s.Balance(ctx, testIdentity)
	require.NoError(t, err)
	require.EqualValues(t, 0, balance)
}
