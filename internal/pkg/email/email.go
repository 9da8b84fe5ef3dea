package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a plain-text mail to a single recipient
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer sends mail. Implementations must honour ctx cancellation where the transport allows it.
type Mailer interface {
	SendMail(ctx context.Context, msg Message) error
}

// Driver names accepted in configuration
const (
	DriverLog      = "log"
	DriverSMTP     = "smtp"
	DriverSendGrid = "sendgrid"
)

// Config selects and configures a Mailer
type Config struct {
	Driver         string
	FromName       string
	FromEmail      string
	SMTP           SMTPConfig
	SendGridAPIKey string
}

// New builds the Mailer named by cfg.Driver
func New(cfg Config, logger zerolog.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverLog:
		return NewLogMailer(logger), nil
	case DriverSMTP:
		smtpCfg := cfg.SMTP
		if smtpCfg.FromEmail == "" {
			smtpCfg.FromEmail = cfg.FromEmail
		}
		if smtpCfg.FromName == "" {
			smtpCfg.FromName = cfg.FromName
		}
		return NewSMTPService(smtpCfg, logger), nil
	case DriverSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid api key is required for the sendgrid mail driver")
		}
		return NewSendGridService(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

// LogMailer writes messages to the log instead of delivering them. Used in development.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendMail(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("Mail delivery disabled, message logged")
	return nil
}
