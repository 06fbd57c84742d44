package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/go-course-platform/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	err  error
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func newTestWorker(s Sender) *Worker {
	w := NewWorker(s, mailtpl.Brand{AppName: "Courses", CompanyName: "Acme"}, nil)
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC) }
	return w
}

func body(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle_RendersTemplate(t *testing.T) {
	s := &fakeSender{}
	w := newTestWorker(s)

	out := w.Handle(context.Background(), body(t, EmailJob{
		To:       "a@b.com",
		Template: mailtpl.Welcome,
		Data:     map[string]any{"UserName": "alice", "Kind": "company"},
	}))

	require.Equal(t, Ack, out)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Welcome to Courses, alice", s.sent[0].subject)
	assert.Contains(t, s.sent[0].text, "company account for a@b.com")
	assert.Contains(t, s.sent[0].html, "Acme")
}

func TestHandle_PasswordChangedCarriesTime(t *testing.T) {
	s := &fakeSender{}
	w := newTestWorker(s)

	out := w.Handle(context.Background(), body(t, EmailJob{To: "a@b.com", Template: mailtpl.PasswordChanged}))

	require.Equal(t, Ack, out)
	assert.Contains(t, s.sent[0].text, "02 January 2026, 03:04")
}

func TestHandle_PlainMessage(t *testing.T) {
	s := &fakeSender{}
	w := newTestWorker(s)

	out := w.Handle(context.Background(), body(t, EmailJob{To: "a@b.com", Subject: "hi", Text: "hello"}))

	require.Equal(t, Ack, out)
	assert.Equal(t, sent{"a@b.com", "hi", "hello", ""}, s.sent[0])
}

func TestHandle_Drops(t *testing.T) {
	w := newTestWorker(&fakeSender{})

	assert.Equal(t, Drop, w.Handle(context.Background(), []byte("{nope")))
	assert.Equal(t, Drop, w.Handle(context.Background(), body(t, EmailJob{To: "a@b.com", Template: "missing"})))
	assert.Equal(t, Drop, w.Handle(context.Background(), body(t, EmailJob{To: "a@b.com"})))
}

func TestHandle_RequeuesOnSendFailure(t *testing.T) {
	w := newTestWorker(&fakeSender{err: errors.New("mailgun down")})

	out := w.Handle(context.Background(), body(t, EmailJob{To: "a@b.com", Template: mailtpl.AccountDeleted}))

	assert.Equal(t, Requeue, out)
}

func TestNewMailgun_RequiresConfig(t *testing.T) {
	_, err := NewMailgun("mg.example.com", "", "noreply@example.com", "")
	assert.ErrorIs(t, err, ErrMailgunConfig)

	m, err := NewMailgun("mg.example.com", "key-123", "noreply@example.com", "https://api.eu.mailgun.net/v3")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, m.Timeout)
}
