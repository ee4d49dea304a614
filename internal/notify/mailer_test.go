package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	sent []*sgmail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.resp, f.err
}

func TestSendGridMailer_Send(t *testing.T) {
	client := &fakeSendGrid{resp: &rest.Response{StatusCode: 202}}
	m := &SendGridMailer{client: client, fromName: "WeatherPulse", from: "alerts@weatherpulse.test"}

	err := m.Send(context.Background(), Message{To: "alice@example.com", Subject: "WeatherPulse alerts for Oslo", Body: "Strong winds - x"})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	email := client.sent[0]
	assert.Equal(t, "alerts@weatherpulse.test", email.From.Address)
	assert.Equal(t, "WeatherPulse alerts for Oslo", email.Subject)
	require.Len(t, email.Personalizations, 1)
	require.Len(t, email.Personalizations[0].To, 1)
	assert.Equal(t, "alice@example.com", email.Personalizations[0].To[0].Address)
	require.Len(t, email.Content, 1)
	assert.Equal(t, "text/plain", email.Content[0].Type)
	assert.Equal(t, "Strong winds - x", email.Content[0].Value)
}

func TestSendGridMailer_Errors(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		m := &SendGridMailer{client: &fakeSendGrid{resp: &rest.Response{StatusCode: 401, Body: `{"errors":[]}`}}}
		assert.ErrorContains(t, m.Send(context.Background(), Message{To: "a@b.c"}), "sendgrid returned 401")
	})

	t.Run("transport", func(t *testing.T) {
		m := &SendGridMailer{client: &fakeSendGrid{err: errors.New("dial tcp: timeout")}}
		assert.ErrorContains(t, m.Send(context.Background(), Message{To: "a@b.c"}), "dial tcp")
	})
}

func TestNewSendGridMailer(t *testing.T) {
	m := NewSendGridMailer("SG.key", "alerts@weatherpulse.test")
	assert.NotNil(t, m.client)
	assert.Equal(t, "alerts@weatherpulse.test", m.from)
}
