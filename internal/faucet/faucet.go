package faucet

import (
	"context"
	"time"

	"github.com/bitfaucet/faucet/internal/config"
	"github.com/bitfaucet/faucet/internal/models"
	"github.com/bitfaucet/faucet/pkg/logger"
	"github.com/bitfaucet/faucet/pkg/token"
)

// Faucet is the earn orchestrator. It sequences the eligibility check, the
// balance increment, the conditional payout and the earn record update.
type Faucet struct {
	logger *logger.Logger
	config *config.Config

	store       models.Store
	payout      models.PayoutService
	notificator models.NotificationService
	sealer      *token.Sealer

	nowFn func() time.Time
}

// NewFaucet creates a new Faucet instance
func NewFaucet(
	store models.Store,
	payout models.PayoutService,
	notificator models.NotificationService,
	sealer *token.Sealer,
	logger *logger.Logger,
	config *config.Config,
) models.FaucetI {
	return &Faucet{
		store:       store,
		payout:      payout,
		notificator: notificator,
		sealer:      sealer,
		logger:      logger,
		config:      config,
		nowFn:       time.Now,
	}
}

// Earn runs one earn transaction for the identity. Store failures are fatal
// for the request; a payout failure is not, the credit just carries over.
func (f *Faucet) Earn(ctx context.Context, identity, clientToken string) (*models.EarnResult, error) {
	now := f.nowFn().Unix()

	storedToken, err := f.store.EarnToken(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Both gate sources unseal to 0 when absent or tampered with, which
	// degrades to first-time behaviour.
	wait := BindingWait(f.sealer.Unseal(clientToken), f.sealer.Unseal(storedToken), now, f.config.EarnCooldown)
	if wait > 0 {
		balance, err := f.store.Balance(ctx, identity)
		if err != nil {
			return nil, err
		}
		return &models.EarnResult{
			WaitingTime: wait.Seconds(),
			Balance:     balance,
		}, nil
	}

	balance, err := f.store.IncrementBalance(ctx, identity, f.config.EarnAmount)
	if err != nil {
		return nil, err
	}
	f.logger.Infof("Granted %d units to %s, balance is now %d", f.config.EarnAmount, identity, balance)

	// The payout decision is gated on the value returned by the atomic
	// increment, never on a re-read.
	var paid int64
	if balance >= f.config.PayoutThreshold {
		f.logger.Infof("Sending %d units to %s", balance, identity)
		result := f.payout.Send(ctx, identity, balance)
		if f.notificator != nil {
			f.notificator.NotifyPayout(&models.PayoutNotice{
				Identity:      identity,
				AmountUnits:   balance,
				TransactionID: result.TransactionID,
				Success:       result.Success,
			})
		}
		if result.Success {
			if err := f.store.ClearBalance(ctx, identity); err != nil {
				return nil, err
			}
			paid = balance
			balance = 0
		}
	}

	// Restart the cooldown. This happens on every grant, not only on
	// successful payouts.
	freshToken := f.sealer.Seal(now)
	if err := f.store.SetEarnToken(ctx, identity, freshToken); err != nil {
		return nil, err
	}

	return &models.EarnResult{
		WaitingTime: f.config.EarnCooldown.Seconds(),
		Balance:     balance,
		Paid:        paid,
		Granted:     true,
		ClientToken: freshToken,
	}, nil
}

// Status reports the current remaining wait and balance without mutating
// anything. If the stored record cannot be reached the client token alone
// decides the wait.
func (f *Faucet) Status(ctx context.Context, identity, clientToken string) (*models.EarnResult, error) {
	now := f.nowFn().Unix()

	var storedGrant int64
	var balance int64
	if identity != "" {
		storedToken, err := f.store.EarnToken(ctx, identity)
		if err != nil {
			f.logger.Warn("Falling back to the client token only: ", err)
		} else {
			storedGrant = f.sealer.Unseal(storedToken)
		}

		balance, err = f.store.Balance(ctx, identity)
		if err != nil {
			f.logger.Warn("Failed to read balance for status: ", err)
			balance = 0
		}
	}

	wait := BindingWait(f.sealer.Unseal(clientToken), storedGrant, now, f.config.EarnCooldown)
	return &models.EarnResult{
		WaitingTime: wait.Seconds(),
		Balance:     balance,
	}, nil
}
