package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    interface{}
		wantErr bool
	}{
		{name: "empty driver defaults to log", cfg: Config{}, want: &LogMailer{}},
		{name: "log", cfg: Config{Driver: "LOG"}, want: &LogMailer{}},
		{name: "smtp", cfg: Config{Driver: DriverSMTP, FromEmail: "noreply@school.test"}, want: &SMTPService{}},
		{name: "sendgrid", cfg: Config{Driver: DriverSendGrid, SendGridAPIKey: "SG.key"}, want: &SendGridService{}},
		{name: "sendgrid without key", cfg: Config{Driver: DriverSendGrid}, wantErr: true},
		{name: "unknown", cfg: Config{Driver: "pigeon"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.cfg, zerolog.Nop())
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tc.want, m)
		})
	}
}

func TestNew_SMTPInheritsSender(t *testing.T) {
	m, err := New(Config{Driver: DriverSMTP, FromName: "School", FromEmail: "noreply@school.test"}, zerolog.Nop())
	require.NoError(t, err)

	svc := m.(*SMTPService)
	assert.Equal(t, "noreply@school.test", svc.config.FromEmail)
	assert.Equal(t, "School", svc.config.FromName)
}

func TestLogMailer_SendMail(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	err := m.SendMail(context.Background(), Message{To: "s@school.test", Subject: "Course Invitation", Text: "code"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "s@school.test")
	assert.Contains(t, buf.String(), "Course Invitation")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendMail(ctx, Message{To: "x@school.test"}), context.Canceled)
}

func TestSMTPService_SendMailWithoutCredentials(t *testing.T) {
	svc := NewSMTPService(SMTPConfig{Host: "localhost", Port: 25}, zerolog.Nop())
	assert.NoError(t, svc.SendMail(context.Background(), Message{To: "s@school.test"}))
}

func TestSMTPService_Compose(t *testing.T) {
	svc := NewSMTPService(SMTPConfig{FromName: "School", FromEmail: "noreply@school.test"}, zerolog.Nop())
	raw := string(svc.compose(Message{To: "s@school.test", Subject: "Course Invitation", Text: "Use this code"}))

	assert.True(t, strings.HasPrefix(raw, "From: School <noreply@school.test>\r\n"))
	assert.Contains(t, raw, "Subject: Course Invitation\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nUse this code"))
}

func TestSendGridService_Prepare(t *testing.T) {
	svc := NewSendGridService("SG.key", "School", "noreply@school.test", zerolog.Nop())
	m := svc.prepare(Message{To: "s@school.test", Subject: "Course Invitation", Text: "body"})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "Course Invitation", m.Personalizations[0].Subject)
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, "s@school.test", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "noreply@school.test", m.From.Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
