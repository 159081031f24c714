package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/config"
)

// Mensaje is one outbound email.
type Mensaje struct {
	Asunto string
	Cuerpo string
	Para   []string
}

// Mailer sends notification emails. Callers treat failures as non-fatal and
// log them; a broken mail relay must never roll back a state change.
type Mailer interface {
	Enviar(ctx context.Context, msg Mensaje) error
}

// NewMailer picks the SMTP implementation when a host is configured,
// otherwise a log-only stub.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Warn("MAIL_SMTP_HOST not set; outbound mail will only be logged")
		return &logMailer{from: cfg.From, logger: logger}
	}
	return &smtpMailer{cfg: cfg, logger: logger}
}

type smtpMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (m *smtpMailer) Enviar(_ context.Context, msg Mensaje) error {
	if len(msg.Para) == 0 {
		return nil
	}
	cuerpo := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, strings.Join(msg.Para, ", "), msg.Asunto, msg.Cuerpo)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	if err := smtp.SendMail(addr, nil, m.cfg.From, msg.Para, []byte(cuerpo)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.logger.Info("email enviado",
		zap.Strings("para", msg.Para),
		zap.String("asunto", msg.Asunto))
	return nil
}

type logMailer struct {
	from   string
	logger *zap.Logger
}

func (m *logMailer) Enviar(_ context.Context, msg Mensaje) error {
	m.logger.Info("email (modo log)",
		zap.String("from", m.from),
		zap.Strings("para", msg.Para),
		zap.String("asunto", msg.Asunto),
		zap.String("cuerpo", msg.Cuerpo))
	return nil
}
