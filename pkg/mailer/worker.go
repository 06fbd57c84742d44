package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/go-course-platform/pkg/mailer/templates"
)

// Sender delivers one rendered message; *Mailgun implements it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer loop what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota
	Drop            // nack without requeue
	Requeue         // nack with requeue
)

var ErrEmptyMessage = errors.New("mailer: job has no recipient or body")

// Worker turns queued jobs into sent email.
type Worker struct {
	Sender      Sender
	Brand       mailtpl.Brand
	Logger      *logrus.Logger
	SendTimeout time.Duration

	now func() time.Time
}

func NewWorker(sender Sender, brand mailtpl.Brand, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Brand: brand, Logger: logger, SendTimeout: 15 * time.Second, now: time.Now}
}

// Prepare resolves the subject and bodies for job, rendering its template
// when one is set.
func (w *Worker) Prepare(job EmailJob) (subject, text, html string, err error) {
	job.EnsureRecipient()
	if job.Template == "" {
		if strings.TrimSpace(job.To) == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", ErrEmptyMessage
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", ErrEmptyMessage
	}
	data := mailtpl.Merge(w.Brand, w.now(), job.Data)
	subject, text, html, err = mailtpl.Render(strings.ToLower(job.Template), data)
	if err != nil {
		return "", "", "", err
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}

// Handle processes one raw delivery body. Malformed or unrenderable jobs
// are dropped; send failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.log().WithError(err).Warn("bad message")
		return Drop
	}
	subject, text, html, err := w.Prepare(job)
	if err != nil {
		w.log().WithError(err).WithField("template", job.Template).Warn("render failed")
		return Drop
	}
	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		w.log().WithError(err).WithField("to", job.To).Error("send failed")
		return Requeue
	}
	w.log().WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}

func (w *Worker) log() *logrus.Logger {
	if w.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		w.Logger = l
	}
	return w.Logger
}
