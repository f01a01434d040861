package notificator

import (
	"runtime/debug"

	"github.com/bitfaucet/faucet/internal/models"
	"github.com/bitfaucet/faucet/pkg/logger"
)

// Notificator fans payout outcomes out to the configured operator channels.
// Since the faucet never retries a payout, these alerts are what makes
// manual reconciliation possible.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) models.NotificationService {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery so a broken alert channel
// never takes down the earn request
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) NotifyPayout(notice *models.PayoutNotice) {
	message := notice.String()

	if n.TelegramNotificator != nil {
		n.safeCall(func() { n.TelegramNotificator.SendNotification(message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil {
		n.safeCall(func() { n.EmailNotificator.SendNotification(message) }, "emailNotification")
	}
}
