package notificator

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/bitfaucet/faucet/pkg/logger"
)

type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	Recipient    string

	SMTPAuth smtp.Auth
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string, recipient string) *EmailNotificator {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailNotificator{
		logger:       logger,
		SMTPAuth:     auth,
		SMTPHost:     SMTPHost,
		SMTPPort:     SMTPPort,
		SMTPUser:     SMTPUser,
		SMTPPassword: SMTPPassword,
		SMTPSender:   SMTPSender,
		Recipient:    recipient,
	}
}

func (e *EmailNotificator) SendNotification(message string) {
	addr := fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(e.SMTPPort))
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.SMTPSender,    // From address
		e.Recipient,     // To address
		"Faucet payout", // Subject
		message,         // Email body
	)
	if err := smtp.SendMail(addr, e.SMTPAuth, e.SMTPSender, []string{e.Recipient}, []byte(msg)); err != nil {
		e.logger.Errorf("failed to send email: %v", err)
	}
}
