package templates

import (
	"time"
)

// Brand carries the sender-side fields every template footer uses.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
}

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithKind(kind string) Option { return func(d *EmailData) { d.Kind = kind } }

// NewBaseEmailData fills the brand fields and applies opts.
func NewBaseEmailData(b Brand, userName, email string, opts ...Option) EmailData {
	d := EmailData{
		UserName: userName,
		Email:    email,

		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		AppName:        b.AppName,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Merge overlays job-provided data on the brand defaults. Empty values in
// data do not override a default.
func Merge(b Brand, at time.Time, data map[string]any) map[string]any {
	out := ToMap(NewBaseEmailData(b, "", "", WithTime(at)))
	for k, v := range data {
		if s, ok := v.(string); ok && s == "" {
			if _, exists := out[k]; exists {
				continue
			}
		}
		out[k] = v
	}
	return out
}
