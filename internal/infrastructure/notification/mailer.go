package notification

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/scg/portal/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message is an e-mail with a plain text and an optional HTML body
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends e-mail
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns the console mailer when mail.console is set, SMTP otherwise
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Console {
		return NewConsoleMailer(logger)
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer delivers mail through an SMTP relay
type SMTPMailer struct {
	addr     string
	host     string
	from     string
	username string
	password string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTP mailer. Auth is used only when a username is set.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		send:     smtp.SendMail,
	}
}

// Send implements Mailer
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	body, err := buildMIME(m.from, msg, time.Now())
	if err != nil {
		return err
	}
	if err := m.send(m.addr, auth, m.from, msg.To, body); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", m.addr, err)
	}
	return nil
}

// ConsoleMailer logs messages instead of sending them
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsoleMailer creates a console mailer
func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

// Send implements Mailer
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("Mail",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

func buildMIME(from string, msg Message, now time.Time) ([]byte, error) {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Text)
		return []byte(b.String()), nil
	}

	boundary, err := newBoundary()
	if err != nil {
		return nil, err
	}
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")
	for _, part := range []struct{ kind, body string }{{"text/plain", msg.Text}, {"text/html", msg.HTML}} {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + part.kind + "; charset=utf-8\r\n\r\n")
		b.WriteString(part.body + "\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String()), nil
}

func newBoundary() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate MIME boundary: %w", err)
	}
	return "scg-" + hex.EncodeToString(buf), nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*ConsoleMailer)(nil)
)
