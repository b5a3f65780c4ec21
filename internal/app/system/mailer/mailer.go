// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp host not configured")

// Sender delivers a single email. Mailer satisfies it; tests use a recording fake.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Mailer sends emails via SMTP.
type Mailer struct {
	dialer   *gomail.Dialer
	host     string
	from     string
	fromName string
	log      *zap.Logger
}

// Config holds the configuration for creating a Mailer.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// New creates a new Mailer with the given configuration.
func New(cfg Config, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass),
		host:     cfg.Host,
		from:     cfg.From,
		fromName: cfg.FromName,
		log:      log,
	}
}

// Email represents an email to be sent.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Verify opens and closes an SMTP connection so misconfiguration shows up at startup.
func (m *Mailer) Verify() error {
	if m.host == "" {
		return ErrNotConfigured
	}
	sc, err := m.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp verify: %w", err)
	}
	return sc.Close()
}

// Send sends an email. When HTMLBody is set the message is multipart/alternative
// with the text body first.
// gomail has no context support, so a cancelled ctx abandons the wait but not the dial.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if m.host == "" {
		return ErrNotConfigured
	}
	msg := m.message(email)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		m.log.Error("failed to send email",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}

func (m *Mailer) message(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	if m.fromName != "" {
		msg.SetAddressHeader("From", m.from, m.fromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.TextBody)
	if email.HTMLBody != "" {
		msg.AddAlternative("text/html", email.HTMLBody)
	}
	return msg
}
