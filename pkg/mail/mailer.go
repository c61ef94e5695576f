package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"
)

// Mailer is what the services program against. Implementations must be safe
// for concurrent use; dispatch is fire-and-forget relative to the HTTP
// response, so a Send failure is logged, never propagated to the client.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, to, name, resetLink string) error
	SendPasswordResetConfirmation(ctx context.Context, to, name string) error
	SendCredentialsEmail(ctx context.Context, to, name, email, password string) error
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, name, resetLink string) error {
	body, err := render(resetTmpl, map[string]any{
		"Name": name,
		"Link": resetLink,
		"Year": time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) SendPasswordResetConfirmation(ctx context.Context, to, name string) error {
	body, err := render(resetDoneTmpl, map[string]any{
		"Name": name,
		"Year": time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Your password has been changed", body)
}

func (m *SMTPMailer) SendCredentialsEmail(ctx context.Context, to, name, email, password string) error {
	body, err := render(credentialsTmpl, map[string]any{
		"Name":     name,
		"Email":    email,
		"Password": password,
		"Year":     time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Your Altera account", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.Host})
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}
	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	return client.Quit()
}

// Noop satisfies Mailer for deployments without an SMTP server configured.
type Noop struct{}

func (Noop) SendPasswordResetEmail(context.Context, string, string, string) error { return nil }
func (Noop) SendPasswordResetConfirmation(context.Context, string, string) error  { return nil }
func (Noop) SendCredentialsEmail(context.Context, string, string, string, string) error {
	return nil
}
