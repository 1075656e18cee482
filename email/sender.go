package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
)

var (
	ErrSendFailed = errors.New("failed to send email")
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	AppBaseURL string
}

// Sender interface for sending emails (useful for mocking in tests)
type Sender interface {
	Send(to, subject, body string) error
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{
		config: config,
	}
}

// Enabled reports whether the service has an SMTP host configured
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// GeneratePendingReviewEmail generates the email sent to a tenant owner
// when a new testimonial lands in their moderation queue
func (s *EmailService) GeneratePendingReviewEmail(title, productName string) (subject, body string, err error) {
	if title == "" {
		return "", "", errors.New("title is required")
	}

	subject = "New testimonial awaiting review"
	reviewLink := fmt.Sprintf("%s/testimonials?status=pending", s.config.AppBaseURL)

	product := productName
	if product == "" {
		product = "your product"
	}

	body = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New testimonial awaiting review</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="color: #2563eb;">New testimonial submitted</h1>
        <p>A new testimonial titled <strong>%s</strong> was submitted for %s and is waiting for moderation.</p>
        <p style="margin: 30px 0;">
            <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">
                Review now
            </a>
        </p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
        <p style="color: #999; font-size: 12px;">
            This message was sent automatically, please do not reply.
        </p>
    </div>
</body>
</html>`, title, product, reviewLink)

	return subject, body, nil
}

// SendPendingReviewEmail notifies a tenant owner about a pending testimonial
func (s *EmailService) SendPendingReviewEmail(toEmail, title, productName string) error {
	if toEmail == "" {
		return errors.New("email is required")
	}

	subject, body, err := s.GeneratePendingReviewEmail(title, productName)
	if err != nil {
		return err
	}

	return s.sendMail(toEmail, subject, body)
}

// sendMail sends an email using SMTP
func (s *EmailService) sendMail(to, subject, body string) error {
	from := s.config.FromEmail
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n%s\r\n%s",
		to, from, subject, mime, body))

	var auth smtp.Auth
	if s.config.SMTPUser != "" && s.config.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPass, s.config.SMTPHost)
	}

	// Port 465 needs a direct TLS connection, everything else goes through
	// the STARTTLS path in smtp.SendMail
	var err error
	if s.config.SMTPPort == 465 {
		err = s.sendMailSSL(addr, auth, from, to, msg)
	} else {
		err = smtp.SendMail(addr, auth, from, []string{to}, msg)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	return nil
}

// sendMailSSL sends email using a direct SSL/TLS connection (for port 465)
func (s *EmailService) sendMailSSL(addr string, auth smtp.Auth, from, to string, msg []byte) error {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.config.SMTPHost,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err := writer.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return writer.Close()
}
