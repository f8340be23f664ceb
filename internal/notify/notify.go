package notify

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

// Message kinds.
const (
	KindPasswordReset   = "password_reset"
	KindPasswordChanged = "password_changed"
)

// ErrUndeliverable marks a message no retry can deliver.
var ErrUndeliverable = errors.New("undeliverable message")

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Message is a rendered email ready for a transport.
type Message struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Validate reports whether m can be delivered.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: no recipient", ErrUndeliverable)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrUndeliverable, m.To, err)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: no subject", ErrUndeliverable)
	}
	return nil
}

// Encode serializes m for the mail queue.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a queued message body.
func DecodeMessage(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type Options struct {
	AppName     string
	FrontendURL string
	ResetTTL    time.Duration
}

// Notifier renders transactional emails and hands them to a Sender.
type Notifier struct {
	sender Sender
	opts   Options
	now    func() time.Time
}

func NewNotifier(sender Sender, opts Options) *Notifier {
	if opts.AppName == "" {
		opts.AppName = "Finax"
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	return &Notifier{sender: sender, opts: opts, now: time.Now}
}

// SendPasswordReset emails the reset link carrying the raw token.
func (n *Notifier) SendPasswordReset(ctx context.Context, to, name, token string) error {
	body, err := render("password_reset.html", map[string]any{
		"Name":      name,
		"AppName":   n.opts.AppName,
		"ResetURL":  n.ResetURL(token),
		"ExpiresIn": humanize(n.opts.ResetTTL),
		"Year":      n.now().Year(),
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Password reset - " + n.opts.AppName,
		HTML:    body,
	})
}

// SendPasswordChanged emails the confirmation that a reset completed.
func (n *Notifier) SendPasswordChanged(ctx context.Context, to, name string) error {
	now := n.now().UTC()
	body, err := render("password_changed.html", map[string]any{
		"Name":      name,
		"AppName":   n.opts.AppName,
		"ChangedAt": now.Format("2006-01-02 15:04 MST"),
		"Year":      now.Year(),
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		Kind:    KindPasswordChanged,
		To:      to,
		Subject: "Password changed - " + n.opts.AppName,
		HTML:    body,
	})
}

// ResetURL builds <frontend>/reset-password?token=<token>.
func (n *Notifier) ResetURL(token string) string {
	base := strings.TrimRight(n.opts.FrontendURL, "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func humanize(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
