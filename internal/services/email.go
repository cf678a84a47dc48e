package services

import (
	"fmt"
	"net/smtp"

	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
)

// EmailService handles sending emails
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// IsEnabled returns whether email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.cfg.Enabled
}

// NotifyInquiry emails the admin about a new property inquiry.
func (s *EmailService) NotifyInquiry(inquiry *domain.Inquiry, property *domain.Property) error {
	if !s.cfg.Enabled {
		fmt.Printf("[EMAIL] New inquiry from %s (%s) for property #%d\n", inquiry.Name, inquiry.Email, inquiry.PropertyID)
		return nil
	}

	title := fmt.Sprintf("property #%d", inquiry.PropertyID)
	if property != nil {
		title = property.Title
	}
	phone := "Not provided"
	if inquiry.Phone != nil && *inquiry.Phone != "" {
		phone = *inquiry.Phone
	}

	subject := fmt.Sprintf("New Inquiry: %s", title)
	textBody := fmt.Sprintf(`New Property Inquiry

Property: %s
Name: %s
Email: %s
Phone: %s
Submitted: %s

Message:
%s

Inquiry ID: #%d`, title, inquiry.Name, inquiry.Email, phone,
		inquiry.CreatedAt.Format("January 2, 2006 at 3:04 PM"), inquiry.Message, inquiry.ID)

	return s.SendHTMLEmail(s.cfg.AdminEmail, subject, "", textBody)
}

// NotifyMessage emails the admin about a new contact form message.
func (s *EmailService) NotifyMessage(msg *domain.Message) error {
	if !s.cfg.Enabled {
		fmt.Printf("[EMAIL] New contact message from %s (%s)\n", msg.Name, msg.Email)
		return nil
	}

	subject := fmt.Sprintf("New Contact Form Submission from %s", msg.Name)
	textBody := fmt.Sprintf(`New Contact Form Submission

Name: %s
Email: %s
Subject: %s
Submitted: %s

Message:
%s

Message ID: #%d`, msg.Name, msg.Email, msg.Subject,
		msg.CreatedAt.Format("January 2, 2006 at 3:04 PM"), msg.Message, msg.ID)

	return s.SendHTMLEmail(s.cfg.AdminEmail, subject, "", textBody)
}

// SendPasswordReset emails a password-reset link to the user.
func (s *EmailService) SendPasswordReset(to, resetURL string) error {
	if !s.cfg.Enabled {
		fmt.Printf("[EMAIL] Password reset link for %s: %s\n", to, resetURL)
		return nil
	}

	subject := "Reset your password"
	textBody := fmt.Sprintf(`Hello,

We received a request to reset the password for your account.

Reset your password using the link below (valid for 1 hour):
%s

If you did not request this, please ignore this email.

Best regards,
%s`, resetURL, s.cfg.FromName)

	return s.SendHTMLEmail(to, subject, "", textBody)
}

// SendHTMLEmail sends an HTML email with plain text fallback
func (s *EmailService) SendHTMLEmail(to, subject, htmlBody, textBody string) error {
	if !s.cfg.Enabled {
		fmt.Printf("[EMAIL] Would send to %s: %s\n", to, subject)
		return nil
	}

	if s.cfg.SMTPHost == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	// Build multipart message
	boundary := "----=_NextPart_1234567890"

	headers := fmt.Sprintf("From: %s\r\n", from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary) +
		"\r\n"

	message := headers +
		fmt.Sprintf("--%s\r\n", boundary) +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		textBody + "\r\n"

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary) +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"Content-Transfer-Encoding: quoted-printable\r\n" +
			"\r\n" +
			htmlBody + "\r\n"
	}

	message += fmt.Sprintf("--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
