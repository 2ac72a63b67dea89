// Package mail sends transactional email over SMTP with implicit TLS.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/invest-tracker/internal/config"
)

// Mailer sends plain text email to a single recipient
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through an SMTP server over a TLS connection,
// as required by providers that only expose port 465.
type SMTPMailer struct {
	host     string
	port     int
	sender   string
	password string
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		sender:   cfg.Sender,
		password: cfg.Password,
	}
}

// Send dispatches one message. It returns an error when SMTP credentials are
// not configured so callers can surface a clear failure instead of a timeout.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.host == "" || m.sender == "" || m.password == "" {
		return fmt.Errorf("smtp credentials are not configured")
	}

	headers := []string{
		fmt.Sprintf("From: %s", m.sender),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
	}
	message := strings.Join(headers, "\r\n") + body

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("connecting to smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.sender); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
