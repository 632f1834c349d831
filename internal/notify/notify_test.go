package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type sent struct {
	to      []string
	subject string
	body    string
}

func testMailer(cfg SMTPConfig, fail bool) (*Mailer, *[]sent, *sync.Mutex) {
	m := NewMailer(cfg, "http://localhost:8080/", false)
	var mu sync.Mutex
	var out []sent
	m.send = func(_ SMTPConfig, to []string, subject, body string) error {
		mu.Lock()
		defer mu.Unlock()
		out = append(out, sent{to, subject, body})
		if fail {
			return errors.New("connection refused")
		}
		return nil
	}
	return m, &out, &mu
}

func TestNotifySends(t *testing.T) {
	m, out, mu := testMailer(SMTPConfig{Host: "smtp.example.com", Port: "587", From: "noreply@example.com"}, false)

	m.Notify(context.Background(), "seller@example.com", "hello", "body")
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(*out) != 1 {
		t.Fatalf("sent %d emails, want 1", len(*out))
	}
	if (*out)[0].to[0] != "seller@example.com" || (*out)[0].subject != "hello" {
		t.Errorf("got %+v", (*out)[0])
	}
}

func TestNotifySkips(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		to   string
	}{
		{"unconfigured", SMTPConfig{}, "a@example.com"},
		{"no recipient", SMTPConfig{Host: "smtp.example.com", From: "x@example.com"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, out, mu := testMailer(tt.cfg, false)
			m.Notify(context.Background(), tt.to, "s", "b")
			m.Wait()
			mu.Lock()
			defer mu.Unlock()
			if len(*out) != 0 {
				t.Errorf("sent %d emails, want 0", len(*out))
			}
		})
	}
}

func TestNotifySwallowsErrors(t *testing.T) {
	m, out, mu := testMailer(SMTPConfig{Host: "smtp.example.com", From: "x@example.com"}, true)

	m.Notify(context.Background(), "a@example.com", "s", "b")
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(*out) != 1 {
		t.Errorf("attempted %d sends, want 1", len(*out))
	}
}

func TestPropertyURL(t *testing.T) {
	m := NewMailer(SMTPConfig{}, "http://localhost:8080/", false)
	if got := m.PropertyURL(42); got != "http://localhost:8080/properties/42" {
		t.Errorf("PropertyURL = %q", got)
	}
}

func TestMessageEmail(t *testing.T) {
	subject, body := MessageEmail("Ann Lee", "Craftsman", "Is it available?\nThanks", "http://x/properties/1")

	if subject != "New message about Craftsman" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"Ann Lee sent you a message", "> Is it available?", "> Thanks", "http://x/properties/1"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestOfferEmails(t *testing.T) {
	subject, body := OfferEmail("Bob", "Craftsman", 290000, "", "http://x/properties/1")
	if subject != "New offer on Craftsman: $290,000" {
		t.Errorf("subject = %q", subject)
	}
	if strings.Contains(body, "> ") {
		t.Error("empty offer message should not be quoted")
	}

	subject, body = OfferStatusEmail("Craftsman", 290000, "accepted", "http://x/properties/1")
	if subject != "Your offer on Craftsman was accepted" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "$290,000") {
		t.Errorf("body = %q", body)
	}
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1250000, "1,250,000"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := FormatWithCommas(tt.in); got != tt.want {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSMTPConfigIsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		want bool
	}{
		{"fully configured", SMTPConfig{Host: "smtp.example.com", Port: "587", From: "test@example.com"}, true},
		{"missing host", SMTPConfig{From: "test@example.com"}, false},
		{"missing from", SMTPConfig{Host: "smtp.example.com"}, false},
		{"empty", SMTPConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildEmail(t *testing.T) {
	msg := string(buildEmail("from@example.com", []string{"a@example.com", "b@example.com"}, "Subj", "Body"))
	for _, want := range []string{"From: from@example.com\r\n", "To: a@example.com, b@example.com\r\n", "Subject: Subj\r\n", "\r\n\r\nBody"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildEmailHeaders(t *testing.T) {
	msg := string(buildEmail("Fsbo <noreply@fsbo.example>", []string{"a@example.com"}, "Offer on\r\nBcc: evil@example.com", "Body"))

	if strings.Contains(msg, "\r\nBcc:") {
		t.Errorf("subject broke onto a new header line:\n%s", msg)
	}
	for _, want := range []string{"Date: ", "Message-ID: <", "@fsbo.example>\r\n"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildEmailEncodesNonASCIISubject(t *testing.T) {
	msg := string(buildEmail("from@example.com", []string{"a@example.com"}, "Offre acceptée", "Body"))
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Errorf("subject not encoded:\n%s", msg)
	}
}

func TestSMTPAddr(t *testing.T) {
	tests := []struct {
		cfg  SMTPConfig
		want string
	}{
		{SMTPConfig{Host: "smtp.example.com", Port: "465"}, "smtp.example.com:465"},
		{SMTPConfig{Host: "smtp.example.com"}, "smtp.example.com:587"},
	}
	for _, tt := range tests {
		if got := tt.cfg.addr(); got != tt.want {
			t.Errorf("addr() = %q, want %q", got, tt.want)
		}
	}
}
