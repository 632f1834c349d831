package notify

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const smtpTimeout = 30 * time.Second

// SMTPConfig holds SMTP connection settings. Port 465 uses implicit TLS;
// any other port starts in plain text and upgrades when the server offers
// STARTTLS.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

func (c SMTPConfig) addr() string {
	port := c.Port
	if port == "" {
		port = "587"
	}
	return net.JoinHostPort(c.Host, port)
}

func sendSMTP(cfg SMTPConfig, to []string, subject, body string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	c, err := dialSMTP(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return fmt.Errorf("%s does not accept authentication", cfg.Host)
		}
		if err := c.Auth(smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(buildEmail(cfg.From, to, subject, body)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return c.Quit()
}

func dialSMTP(cfg SMTPConfig) (*smtp.Client, error) {
	tlsCfg := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: smtpTimeout}

	var conn net.Conn
	var err error
	if cfg.Port == "465" {
		conn, err = tls.DialWithDialer(dialer, "tcp", cfg.addr(), tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", cfg.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.addr(), err)
	}
	_ = conn.SetDeadline(time.Now().Add(smtpTimeout))

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}

	if cfg.Port != "465" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				c.Close()
				return nil, fmt.Errorf("starttls: %w", err)
			}
		}
	}
	return c, nil
}

func buildEmail(from string, to []string, subject, body string) []byte {
	var sb strings.Builder
	header := func(k, v string) {
		fmt.Fprintf(&sb, "%s: %s\r\n", k, headerValue(v))
	}
	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), mailDomain(from)))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

// headerValue keeps user-supplied text on a single header line.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func mailDomain(addr string) string {
	if _, domain, ok := strings.Cut(addr, "@"); ok && domain != "" {
		return strings.Trim(domain, "<> ")
	}
	return "localhost"
}
