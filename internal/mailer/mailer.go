package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends a pothole report with the annotated image attached.
type Mailer interface {
	SendReport(imagePath, message, latitude, longitude string) error
}

// Options carries SMTP settings for the report mailer.
type Options struct {
	Host      string
	Port      int
	User      string
	Password  string
	Recipient string
}

type smtpMailer struct {
	opts Options
}

// NewSMTPMailer creates a Mailer that delivers over SMTP with STARTTLS.
func NewSMTPMailer(opts Options) Mailer {
	return &smtpMailer{opts: opts}
}

func (m *smtpMailer) SendReport(imagePath, message, latitude, longitude string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.opts.User)
	msg.SetHeader("To", m.opts.Recipient)
	msg.SetHeader("Subject", "Pothole Report")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A pothole has been reported.\n\nMessage: %s\nLocation: %s, %s\n\nThe annotated image is attached.",
		message, latitude, longitude,
	))
	msg.Attach(imagePath)

	dialer := gomail.NewDialer(m.opts.Host, m.opts.Port, m.opts.User, m.opts.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}
