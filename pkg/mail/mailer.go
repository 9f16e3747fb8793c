package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/guestpostlinks/pr-admin-api/pkg/config"
)

// Mailer sends transactional emails over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewMailer builds a Mailer from SMTP configuration.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
	return &Mailer{dialer: dialer, sender: cfg.Sender}
}

// SendPasswordReset emails the one-time passcode used by the reset flow.
func (m *Mailer) SendPasswordReset(to, recipientName string, otp int) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset for PR Account")
	msg.SetBody("text/html", resetBody(recipientName, otp))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func resetBody(recipientName string, otp int) string {
	return fmt.Sprintf(`
    <div style="max-width:600px;margin:20px auto;padding:20px;border:1px solid #ddd;border-radius:5px;background-color:#f9f9f9;font-family:Arial,sans-serif;line-height:1.6;">
      <p>Dear %s,</p>
      <p>We received a request to reset your password for your PR account. If you did not make this request, please ignore this email.</p>
      <p>Your OTP for password reset is: <b>%d</b>.</p>
      <p>If you have any questions or need further assistance, please contact our support team.</p>
      <p>Best regards,<br/>The GuestPostLinks Team</p>
    </div>`, recipientName, otp)
}
