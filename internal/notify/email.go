package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailNotifier delivers a message over SMTP, with an explicit TLS dial
// when cfg.UseTLS is set (mirroring the reference codebase's own
// EmailNotifier, which dials TLS itself rather than relying on
// STARTTLS negotiation).
type EmailNotifier struct{}

func (e *EmailNotifier) Notify(ctx context.Context, cfg EmailConfig, message string) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	msg := buildMIMEMessage(cfg.From, cfg.To, "hostwatch alert", message)

	deadline, hasDeadline := ctx.Deadline()
	dialer := &net.Dialer{}
	if hasDeadline {
		dialer.Deadline = deadline
	} else {
		dialer.Timeout = 10 * time.Second
	}

	if cfg.UseTLS {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: cfg.Host})
		if err != nil {
			return fmt.Errorf("notify: email: tls dial: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, cfg.Host)
		if err != nil {
			return fmt.Errorf("notify: email: smtp client: %w", err)
		}
		defer client.Close()
		return sendViaClient(client, auth, cfg.From, cfg.To, msg)
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("notify: email: dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("notify: email: smtp client: %w", err)
	}
	defer client.Close()
	return sendViaClient(client, auth, cfg.From, cfg.To, msg)
}

func sendViaClient(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("notify: email: auth: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("notify: email: mail from: %w", err)
	}
	for _, recipient := range strings.Split(to, ",") {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("notify: email: rcpt to %s: %w", recipient, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify: email: data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return fmt.Errorf("notify: email: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notify: email: close: %w", err)
	}
	return client.Quit()
}

func buildMIMEMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return b.String()
}
