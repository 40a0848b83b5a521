package services

import (
	"fmt"
	"html"
	"net/smtp"

	"github.com/dimitrije/salesdesk/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send delivers an HTML message. It is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(buildMessage(s.cfg.From, to, subject, body)))
}

// SendWelcome mails a newly provisioned member. An empty password omits the credentials block.
func (s *EmailService) SendWelcome(to, name, password, loginURL string) error {
	return s.Send(to, "Your SalesDesk account is ready", welcomeBody(name, to, password, loginURL))
}

func (s *EmailService) SendConfirmation(to, confirmURL string) error {
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Confirm your email</h2>
			<p>Follow the link below to confirm your SalesDesk account.</p>
			<p><a href="%s">Confirm email address</a></p>
			<p>The link expires in 24 hours.</p>
		</body>
		</html>
	`, html.EscapeString(confirmURL))

	return s.Send(to, "Confirm your SalesDesk account", body)
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body)
}

func welcomeBody(name, email, password, loginURL string) string {
	credentials := ""
	if password != "" {
		credentials = fmt.Sprintf(`<p>Email: <strong>%s</strong><br>Temporary password: <strong>%s</strong></p>
			<p>Please change it after your first sign-in.</p>`, html.EscapeString(email), html.EscapeString(password))
	}

	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to SalesDesk</h2>
			<p>Hi %s,</p>
			<p>An administrator created an account for you.</p>
			%s
			<p><a href="%s">Sign in</a></p>
		</body>
		</html>
	`, html.EscapeString(name), credentials, html.EscapeString(loginURL))
}
