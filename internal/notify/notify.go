// Package notify emails users when they receive messages and offers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Mailer delivers notification emails in the background. Delivery failures
// are logged and never reach the caller.
type Mailer struct {
	cfg     SMTPConfig
	baseURL string
	devMode bool
	send    func(cfg SMTPConfig, to []string, subject, body string) error
	wg      sync.WaitGroup
}

// NewMailer creates a mailer. With no SMTP host configured it only logs.
func NewMailer(cfg SMTPConfig, baseURL string, devMode bool) *Mailer {
	return &Mailer{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		devMode: devMode,
		send:    sendSMTP,
	}
}

// Enabled reports whether emails will actually be sent.
func (m *Mailer) Enabled() bool {
	return m.cfg.IsConfigured()
}

// Notify queues an email to a single recipient.
func (m *Mailer) Notify(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if m.devMode {
		slog.DebugContext(ctx, "notification", "to", to, "subject", subject)
	}
	if !m.cfg.IsConfigured() {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.send(m.cfg, []string{to}, subject, body); err != nil {
			slog.Error("sending notification", "to", to, "subject", subject, "error", err)
		}
	}()
}

// Wait blocks until queued emails have been attempted.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

// PropertyURL links to a listing on the web app.
func (m *Mailer) PropertyURL(propertyID int64) string {
	return fmt.Sprintf("%s/properties/%d", m.baseURL, propertyID)
}

// MessageEmail builds the subject and body for a new-message notification.
func MessageEmail(fromName, propertyTitle, text, link string) (subject, body string) {
	subject = fmt.Sprintf("New message about %s", propertyTitle)
	body = fmt.Sprintf("Hi,\n\n%s sent you a message about %s:\n\n%s\n\nReply here: %s\n",
		fromName, propertyTitle, quote(text), link)
	return subject, body
}

// OfferEmail builds the notification a seller receives for a new offer.
func OfferEmail(buyerName, propertyTitle string, amount int64, message, link string) (subject, body string) {
	subject = fmt.Sprintf("New offer on %s: $%s", propertyTitle, FormatWithCommas(amount))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi,\n\n%s offered $%s for %s.\n", buyerName, FormatWithCommas(amount), propertyTitle)
	if message != "" {
		fmt.Fprintf(&sb, "\n%s\n", quote(message))
	}
	fmt.Fprintf(&sb, "\nReview it here: %s\n", link)
	return subject, sb.String()
}

// OfferStatusEmail builds the notification a buyer receives when an offer is resolved.
func OfferStatusEmail(propertyTitle string, amount int64, status, link string) (subject, body string) {
	subject = fmt.Sprintf("Your offer on %s was %s", propertyTitle, status)
	body = fmt.Sprintf("Hi,\n\nYour $%s offer on %s was %s.\n\n%s\n",
		FormatWithCommas(amount), propertyTitle, status, link)
	return subject, body
}

func quote(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// FormatWithCommas renders n with thousands separators.
func FormatWithCommas(n int64) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}
