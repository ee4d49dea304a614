package notify

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a plain text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends mail through the SendGrid v3 API
type SendGridMailer struct {
	client   sendGridClient
	fromName string
	from     string
}

// NewSendGridMailer creates a mailer sending as from
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: "WeatherPulse",
		from:     from,
	}
}

// Send delivers msg. Any non-2xx response is an error.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	email := sgmail.NewV3Mail()
	email.SetFrom(sgmail.NewEmail(m.fromName, m.from))
	email.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	email.AddPersonalizations(p)
	email.AddContent(sgmail.NewContent("text/plain", msg.Body))

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return errors.Wrap(err, "sendgrid request failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
