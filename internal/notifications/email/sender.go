// Package email provides email notification sending via SMTP.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
)

const defaultDialTimeout = 10 * time.Second

// Sender implements email notification sending via SMTP. Connection settings
// come from each channel's config bag, not from global configuration.
type Sender struct {
	dialTimeout time.Duration
}

// NewSender creates a new email sender.
func NewSender() *Sender {
	return &Sender{dialTimeout: defaultDialTimeout}
}

// Type returns the channel type.
func (s *Sender) Type() domain.ChannelType {
	return domain.ChannelTypeEmail
}

// SuccessTag returns the result tag for a successful send.
func (s *Sender) SuccessTag() string {
	return "Email sent"
}

// Send sends the message to a single recipient. The recipient is the step
// target when it looks like an email address, else the channel's configured
// default recipient.
func (s *Sender) Send(ctx context.Context, channel domain.NotificationChannel, msg notifications.Message) error {
	cfg, err := channel.EmailConfig()
	if err != nil {
		return err
	}

	recipient := cfg.DefaultRecipient
	if strings.Contains(msg.Target, "@") {
		recipient = msg.Target
	}
	if recipient == "" {
		return errors.New("no recipient: step target is not an email and channel has no defaultRecipient")
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return fmt.Errorf("invalid smtp port %q: %w", cfg.Port, err)
	}

	body := s.buildMessage(cfg.From, recipient, msg.Subject, msg.Body)
	addr := fmt.Sprintf("%s:%d", cfg.Host, port)

	var auth smtp.Auth
	if cfg.User != "" && cfg.Pass != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	return s.sendWithSTARTTLS(ctx, addr, cfg.Host, auth, cfg.From, recipient, body)
}

// buildMessage constructs the email message with headers.
func (s *Sender) buildMessage(from, to, subject, body string) []byte {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return []byte(msg.String())
}

// sendWithSTARTTLS sends an email, upgrading to TLS when the server offers it.
func (s *Sender) sendWithSTARTTLS(ctx context.Context, addr, host string, auth smtp.Auth, from, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(extractEmail(from)); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return client.Quit()
}

// extractEmail extracts the email address from formats like "Name <email@example.com>".
func extractEmail(address string) string {
	if idx := strings.Index(address, "<"); idx != -1 {
		end := strings.Index(address, ">")
		if end > idx {
			return address[idx+1 : end]
		}
	}
	return address
}
