package mail

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/zaivio/nodes-api/internal/config"
)

// Mailer delivers transactional email. Sends are best effort: callers log
// failures and move on rather than failing the triggering operation.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(conf *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(conf.Host, conf.Port, conf.Username, conf.Password),
		from:   conf.From,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("m.dialer.DialAndSend -> %w", err)
	}

	return nil
}

// NoopMailer logs instead of sending. Used in development and tests where no
// SMTP server is configured.
type NoopMailer struct{}

func (NoopMailer) Send(to, subject, _ string) error {
	zap.L().Info("mail suppressed", zap.String("to", to), zap.String("subject", subject))

	return nil
}
