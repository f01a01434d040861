package notificator

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/bitfaucet/faucet/pkg/logger"
)

// TelegramNotificator posts operator alerts into a fixed chat.
type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	chatID string
}

func NewTelegramNotificator(logger *logger.Logger, token, chatID string) (*TelegramNotificator, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramNotificator{
		logger: logger,
		bot:    b,
		chatID: chatID,
	}, nil
}

func (t *TelegramNotificator) SendNotification(message string) {
	params := &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   message,
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send notification: ", err)
	}
}
