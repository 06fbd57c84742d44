package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

var ErrMailgunConfig = errors.New("mailgun: domain, api key and sender are required")

// Mailgun sends rendered email jobs through one reusable Mailgun client.
type Mailgun struct {
	client  *mg.MailgunImpl
	from    string
	Timeout time.Duration
}

// NewMailgun builds the sender. apiBase is optional; set it to mg.APIBaseEU
// for domains hosted in the EU region.
func NewMailgun(domain, apiKey, from, apiBase string) (*Mailgun, error) {
	if domain == "" || apiKey == "" || from == "" {
		return nil, ErrMailgunConfig
	}
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, from: from, Timeout: 10 * time.Second}, nil
}

// Send delivers one message. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.from, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

var _ Sender = (*Mailgun)(nil)
