package faucet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bitfaucet/faucet/internal/config"
	"github.com/bitfaucet/faucet/internal/models"
	"github.com/bitfaucet/faucet/pkg/logger"
	"github.com/bitfaucet/faucet/pkg/token"
)

var errStoreDown = errors.New("store is down")

type stubStore struct {
	earnTokens map[string]string
	balances   map[string]int64

	earnTokenErr error
	setTokenErr  error
	incrementErr error

	setTokenCalls  int
	incrementCalls int
	clearCalls     int
}

func newStubStore() *stubStore {
	return &stubStore{
		earnTokens: map[string]string{},
		balances:   map[string]int64{},
	}
}

func (s *stubStore) EarnToken(_ context.Context, identity string) (string, error) {
	if s.earnTokenErr != nil {
		return "", s.earnTokenErr
	}
	return s.earnTokens[identity], nil
}

func (s *stubStore) SetEarnToken(_ context.Context, identity, tok string) error {
	if s.setTokenErr != nil {
		return s.setTokenErr
	}
	s.setTokenCalls++
	s.earnTokens[identity] = tok
	return nil
}

func (s *stubStore) Balance(_ context.Context, identity string) (int64, error) {
	return s.balances[identity], nil
}

func (s *stubStore) IncrementBalance(_ context.Context, identity string, amount int64) (int64, error) {
	if s.incrementErr != nil {
		return 0, s.incrementErr
	}
	s.incrementCalls++
	s.balances[identity] += amount
	return s.balances[identity], nil
}

func (s *stubStore) ClearBalance(_ context.Context, identity string) error {
	s.clearCalls++
	delete(s.balances, identity)
	return nil
}

func (s *stubStore) Close() error { return nil }

type stubPayout struct {
	result models.PayoutResult

	calls      int
	lastAmount int64
}

func (p *stubPayout) Send(_ context.Context, _ string, amountUnits int64) models.PayoutResult {
	p.calls++
	p.lastAmount = amountUnits
	return p.result
}

type stubNotificator struct {
	notices []*models.PayoutNotice
}

func (n *stubNotificator) NotifyPayout(notice *models.PayoutNotice) {
	n.notices = append(n.notices, notice)
}

func testConfig() *config.Config {
	return &config.Config{
		EarnCooldown:    time.Minute,
		EarnAmount:      1,
		PayoutThreshold: 100,
	}
}

func newTestFaucet(t *testing.T, store *stubStore, payoutService *stubPayout, notifications *stubNotificator, now int64) (*Faucet, *token.Sealer) {
	t.Helper()
	log, err := logger.NewLogger(true)
	require.NoError(t, err)
	sealer := token.NewSealer([]byte("test secret"))
	return &Faucet{
		logger:      log,
		config:      testConfig(),
		store:       store,
		payout:      payoutService,
		notificator: notifications,
		sealer:      sealer,
		nowFn:       func() time.Time { return time.Unix(now, 0) },
	}, sealer
}

func TestEarnFirstGrant(t *testing.T) {
	store := newStubStore()
	payoutService := &stubPayout{}
	f, sealer := newTestFaucet(t, store, payoutService, nil, 1461674566)

	result, err := f.Earn(context.Background(), "W1", "")
	require.NoError(t, err)

	require.True(t, result.Granted)
	require.Equal(t, 60.0, result.WaitingTime)
	require.EqualValues(t, 1, result.Balance)
	require.EqualValues(t, 0, result.Paid)
	require.Equal(t, 0, payoutService.calls)

	// Both the stored record and the returned token carry the grant time.
	require.EqualValues(t, 1461674566, sealer.Unseal(result.ClientToken))
	require.Equal(t, result.ClientToken, store.earnTokens["W1"])
}

func TestEarnRepeatedRequestIsBlocked(t *testing.T) {
	store := newStubStore()
	payoutService := &stubPayout{}
	f, _ := newTestFaucet(t, store, payoutService, nil, 1461674566)

	first, err := f.Earn(context.Background(), "W1", "")
	require.NoError(t, err)

	second, err := f.Earn(context.Background(), "W1", first.ClientToken)
	require.NoError(t, err)

	require.False(t, second.Granted)
	require.Greater(t, second.WaitingTime, 0.0)
	require.LessOrEqual(t, second.WaitingTime, 60.0)
	require.EqualValues(t, 1, second.Balance)
	require.Empty(t, second.ClientToken)
	require.Equal(t, 1, store.incrementCalls)
	require.Equal(t, 1, store.setTokenCalls)
	require.Equal(t, 0, payoutService.calls)
}

func TestEarnBlockedByCookieAlone(t *testing.T) {
	// The store entry is gone but the cookie still blocks.
	store := newStubStore()
	payoutService := &stubPayout{}
	f, sealer := newTestFaucet(t, store, payoutService, nil, 1461674566)

	cookie := sealer.Seal(1461674566 - 10)

	result, err := f.Earn(context.Background(), "W1", cookie)
	require.NoError(t, err)

	require.False(t, result.Granted)
	require.Equal(t, 50.0, result.WaitingTime)
	require.Equal(t, 0, store.incrementCalls)
	require.Equal(t, 0, payoutService.calls)
}

func TestEarnTamperedCookieMeansFirstTime(t *testing.T) {
	store := newStubStore()
	f, _ := newTestFaucet(t, store, &stubPayout{}, nil, 1461674566)

	result, err := f.Earn(context.Background(), "W1", "garbage-token")
	require.NoError(t, err)

	require.True(t, result.Granted)
}

func TestEarnAccumulatesAcrossWindows(t *testing.T) {
	store := newStubStore()
	payoutService := &stubPayout{}

	now := int64(1461674566)
	var clientToken string
	for i := 0; i < 5; i++ {
		f, _ := newTestFaucet(t, store, payoutService, nil, now)
		result, err := f.Earn(context.Background(), "W1", clientToken)
		require.NoError(t, err)
		require.True(t, result.Granted)
		require.EqualValues(t, i+1, result.Balance)
		clientToken = result.ClientToken
		now += 60
	}

	require.EqualValues(t, 5, store.balances["W1"])
	require.Equal(t, 0, payoutService.calls)
}

func TestEarnTriggersPayoutAtThreshold(t *testing.T) {
	store := newStubStore()
	store.balances["W1"] = 99
	payoutService := &stubPayout{result: models.PayoutResult{Success: true, TransactionID: "tx-1"}}
	notifications := &stubNotificator{}
	f, _ := newTestFaucet(t, store, payoutService, notifications, 1461674566)

	result, err := f.Earn(context.Background(), "W1", "")
	require.NoError(t, err)

	require.True(t, result.Granted)
	require.EqualValues(t, 100, result.Paid)
	require.EqualValues(t, 0, result.Balance)
	require.Equal(t, 60.0, result.WaitingTime)

	require.Equal(t, 1, payoutService.calls)
	require.EqualValues(t, 100, payoutService.lastAmount)
	require.Equal(t, 1, store.clearCalls)
	require.NotContains(t, store.balances, "W1")

	require.Len(t, notifications.notices, 1)
	require.True(t, notifications.notices[0].Success)
	require.Equal(t, "tx-1", notifications.notices[0].TransactionID)
}

func TestEarnFailedPayoutKeepsBalance(t *testing.T) {
	store := newStubStore()
	store.balances["W1"] = 99
	payoutService := &stubPayout{result: models.PayoutResult{}}
	notifications := &stubNotificator{}
	f, _ := newTestFaucet(t, store, payoutService, notifications, 1461674566)

	result, err := f.Earn(context.Background(), "W1", "")
	require.NoError(t, err)

	// The grant still succeeds; the payout is merely deferred.
	require.True(t, result.Granted)
	require.EqualValues(t, 0, result.Paid)
	require.EqualValues(t, 100, result.Balance)
	require.Equal(t, 0, store.clearCalls)
	require.EqualValues(t, 100, store.balances["W1"])

	// The cooldown restarts anyway.
	require.Equal(t, 1, store.setTokenCalls)

	require.Len(t, notifications.notices, 1)
	require.False(t, notifications.notices[0].Success)
}

func TestEarnStoreFailureIsFatal(t *testing.T) {
	store := newStubStore()
	store.earnTokenErr = errStoreDown
	f, _ := newTestFaucet(t, store, &stubPayout{}, nil, 1461674566)

	_, err := f.Earn(context.Background(), "W1", "")
	require.ErrorIs(t, err, errStoreDown)
}

func TestEarnRecordWriteFailureIsFatal(t *testing.T) {
	store := newStubStore()
	store.setTokenErr = errStoreDown
	f, _ := newTestFaucet(t, store, &stubPayout{}, nil, 1461674566)

	_, err := f.Earn(context.Background(), "W1", "")
	require.ErrorIs(t, err, errStoreDown)
}

func TestStatusDoesNotMutate(t *testing.T) {
	store := newStubStore()
	store.balances["W1"] = 42
	payoutService := &stubPayout{}
	f, sealer := newTestFaucet(t, store, payoutService, nil, 1461674566)

	cookie := sealer.Seal(1461674566 - 10)

	result, err := f.Status(context.Background(), "W1", cookie)
	require.NoError(t, err)

	require.Equal(t, 50.0, result.WaitingTime)
	require.EqualValues(t, 42, result.Balance)
	require.False(t, result.Granted)
	require.Equal(t, 0, store.incrementCalls)
	require.Equal(t, 0, store.setTokenCalls)
	require.Equal(t, 0, payoutService.calls)
}

func TestStatusFallsBackToClientToken(t *testing.T) {
	store := newStubStore()
	store.earnTokenErr = errStoreDown
	f, sealer := newTestFaucet(t, store, &stubPayout{}, nil, 1461674566)

	cookie := sealer.Seal(1461674566 - 10)

	result, err := f.Status(context.Background(), "W1", cookie)
	require.NoError(t, err)
	require.Equal(t, 50.0, result.WaitingTime)
}
