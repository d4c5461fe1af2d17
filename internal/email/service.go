package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/pkg/logger"
)

// Sender delivers transactional mail.
type Sender interface {
	SendBarberInvite(ctx context.Context, to, name, link string) error
}

// NewSender returns an SMTP sender, or a logging sender when no SMTP host is configured.
func NewSender(cfg config.SMTPConfig, logger *logger.Logger) Sender {
	if cfg.Host == "" {
		return &logSender{logger: logger}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpSender struct {
	dialer dialer
	from   string
	logger *logger.Logger
}

func (s *smtpSender) SendBarberInvite(ctx context.Context, to, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := inviteMessage(s.from, to, name, link)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invite to %s: %w", to, err)
	}
	s.logger.Info("Barber invite sent", "to", to)
	return nil
}

func inviteMessage(from, to, name, link string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetAddressHeader("To", to, name)
	m.SetHeader("Subject", "You have been invited to join your team")
	m.SetBody("text/plain", fmt.Sprintf("Hi %s,\n\nAccept your invite here:\n%s\n", name, link))
	m.AddAlternative("text/html", fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Accept your invite</a></p>`, name, link))
	return m
}

type logSender struct {
	logger *logger.Logger
}

func (s *logSender) SendBarberInvite(_ context.Context, to, _, link string) error {
	s.logger.Warn("SMTP not configured, invite not delivered", "to", to, "link", link)
	return nil
}
