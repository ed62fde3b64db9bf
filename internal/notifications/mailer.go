// Package notifications delivers outbound email. The only sender today is the
// invitation mailer; it is a no-op when notifications.enabled is false or when
// the SMTP host is not configured, so callers never need to guard delivery.
package notifications

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
)

// Mailer sends notification emails over SMTP.
type Mailer struct {
	cfg *config.NotificationsConfig
}

// NewMailer creates a Mailer from the notifications configuration.
func NewMailer(cfg *config.NotificationsConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Enabled reports whether the mailer will actually deliver anything.
func (m *Mailer) Enabled() bool {
	return m.cfg != nil && m.cfg.Enabled && m.cfg.SMTP.Host != ""
}

// SendInvitation composes and delivers a plain-text invitation email.
// Returns nil without sending when the mailer is disabled.
func (m *Mailer) SendInvitation(toEmail, companyName, roleLabel, acceptURL string, expiresAt time.Time) error {
	if !m.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("You've been invited to join %s on QForma", companyName)
	body := strings.Join([]string{
		"Hello,",
		"",
		fmt.Sprintf("You have been invited to join the %s workspace as %s.", companyName, roleLabel),
		"",
		"To accept the invitation, open the link below and sign in or create an account:",
		"  " + acceptURL,
		"",
		fmt.Sprintf("The invitation expires on %s.", expiresAt.UTC().Format(time.RFC1123)),
		"",
		"If you were not expecting this invitation, you can ignore this email.",
		"",
		"— QForma",
	}, "\r\n")

	smtpCfg := &m.cfg.SMTP
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		smtpCfg.From, toEmail, subject,
	)
	msg := []byte(headers + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)

	if smtpCfg.UseTLS {
		return sendMailTLS(addr, smtpCfg.Host, auth, smtpCfg.From, []string{toEmail}, msg)
	}
	return smtp.SendMail(addr, auth, smtpCfg.From, []string{toEmail}, msg)
}

// sendMailTLS connects via implicit TLS (port 465 / SMTPS) and sends a message.
// Use this when UseTLS=true and the port is 465; for port 587 STARTTLS,
// smtp.SendMail handles the upgrade automatically — but we call this path for
// both so the config is unambiguous: UseTLS=true always means an encrypted connection.
func sendMailTLS(addr, host string, auth smtp.Auth, from string, to []string, msg []byte) error {
	tlsConfig := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Fall back to STARTTLS via the standard smtp.SendMail path (port 587 pattern)
		return smtp.SendMail(addr, auth, from, to, msg)
	}
	defer conn.Close()

	hostname, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, hostname)
	if err != nil {
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer c.Quit() //nolint:errcheck

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
