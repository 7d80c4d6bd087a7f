// Package mail delivers invite emails over SMTP. Delivery is best effort:
// the invite flow never fails because an email could not be sent.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings for outbound mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public URL of the patient-facing app; the invite link
	// is BaseURL/invites/<token>.
	BaseURL string
}

// InviteMailer sends invitation emails to prospective patients.
type InviteMailer interface {
	SendInvite(to, token string) error
}

type smtpMailer struct {
	cfg Config
}

// NewSMTPMailer creates an SMTP-backed invite mailer.
func NewSMTPMailer(cfg Config) (InviteMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp mailer requires host and from address")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &smtpMailer{cfg: cfg}, nil
}

func (m *smtpMailer) SendInvite(to, token string) error {
	link := fmt.Sprintf("%s/invites/%s", m.cfg.BaseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your nutritionist has invited you")
	msg.SetBody("text/plain", fmt.Sprintf(
		"You have been invited to create a patient account.\n\n"+
			"Follow this link to accept the invitation:\n%s\n\n"+
			"If you were not expecting this email, you can ignore it.", link))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send invite mail to %s: %w", to, err)
	}
	return nil
}

// NopMailer discards invite emails. Used when SMTP is not configured; the
// invite link is still returned by the API for out-of-band delivery.
type NopMailer struct{}

func (NopMailer) SendInvite(string, string) error { return nil }
