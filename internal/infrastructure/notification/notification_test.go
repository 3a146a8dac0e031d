package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestResetLink(t *testing.T) {
	assert.Equal(t, "https://portal.example.com/reset-password?token=a%2Bb",
		ResetLink("https://portal.example.com/", "a+b"))
}

func TestMessages(t *testing.T) {
	data := LinkData{Email: "ana@example.com", Link: "http://x/reset-password?token=t"}

	reset, err := PasswordResetMessage("ana@example.com", data)
	require.NoError(t, err)
	assert.Equal(t, SubjectPasswordReset, reset.Subject)
	assert.Contains(t, reset.Text, "Hello ana@example.com,")
	assert.Contains(t, reset.HTML, `href="http://x/reset-password?token=t"`)

	data.FirstName = "Ana"
	welcome, err := WelcomeMessage("ana@example.com", data)
	require.NoError(t, err)
	assert.Equal(t, SubjectWelcome, welcome.Subject)
	assert.Contains(t, welcome.Text, "Hello Ana,")
}

func TestAccountMailHandler(t *testing.T) {
	u, err := identity.NewUser("ana@example.com", "Ana", "", identity.UserTypeNormal, nil)
	require.NoError(t, err)

	t.Run("welcome", func(t *testing.T) {
		mailer := &recordingMailer{}
		h := NewAccountMailHandler(mailer, "https://portal", zap.NewNop())
		require.NoError(t, h.Handle(context.Background(), identity.NewPasswordResetRequestedEvent(u, "tok", true)))
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, SubjectWelcome, mailer.sent[0].Subject)
		assert.Equal(t, []string{"ana@example.com"}, mailer.sent[0].To)
		assert.Contains(t, mailer.sent[0].Text, "https://portal/reset-password?token=tok")
	})

	t.Run("reset", func(t *testing.T) {
		mailer := &recordingMailer{}
		h := NewAccountMailHandler(mailer, "https://portal", zap.NewNop())
		require.NoError(t, h.Handle(context.Background(), identity.NewPasswordResetRequestedEvent(u, "tok", false)))
		assert.Equal(t, SubjectPasswordReset, mailer.sent[0].Subject)
	})

	t.Run("send failure is returned", func(t *testing.T) {
		mailer := &recordingMailer{err: errors.New("relay down")}
		h := NewAccountMailHandler(mailer, "https://portal", zap.NewNop())
		assert.Error(t, h.Handle(context.Background(), identity.NewPasswordResetRequestedEvent(u, "tok", false)))
	})

	t.Run("wrong event", func(t *testing.T) {
		h := NewAccountMailHandler(&recordingMailer{}, "https://portal", zap.NewNop())
		assert.Error(t, h.Handle(context.Background(), identity.NewUserCreatedEvent(u)))
	})
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com", Username: "u", Password: "p"})

	var gotAddr, gotFrom string
	var gotAuth smtp.Auth
	var gotBody []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotBody = addr, a, from, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: []string{"ana@example.com"}, Subject: "Hi", Text: "plain", HTML: "<p>html</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.NotNil(t, gotAuth)
	body := string(gotBody)
	assert.True(t, strings.HasPrefix(body, "From: noreply@example.com\r\n"))
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "<p>html</p>")

	assert.Error(t, m.Send(context.Background(), Message{}))
}

func TestBuildMIME_PlainOnly(t *testing.T) {
	body, err := buildMIME("a@example.com", Message{To: []string{"b@example.com"}, Subject: "S", Text: "hello"}, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	assert.Contains(t, string(body), "Content-Type: text/plain; charset=utf-8\r\n\r\nhello")
}

func TestConsoleMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMailer(config.MailConfig{Console: true}, zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: []string{"x@example.com"}, Subject: "S", Text: "T"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "S", logs.All()[0].ContextMap()["subject"])
}
