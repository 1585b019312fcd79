package services

import (
	"crypto/tls"
	"fmt"

	"github.com/campusswap/backend/internal/config"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
}

func NewEmailService(config *config.Config) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	subject := "Welcome to CampusSwap"
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account is ready. Post a listing for a skill you can teach,
		or browse what other students are offering.</p>
		<p><a href="%s">Open CampusSwap</a></p>
	`, name, s.config.BaseURL)

	return s.SendEmail(email, subject, body)
}

func (s *EmailService) SendReportOutcomeEmail(email, listingTitle, outcome string) error {
	subject := "Update on your report"
	body := fmt.Sprintf(`
		<h2>Report reviewed</h2>
		<p>Your report about the listing '%s' was reviewed by a moderator.</p>
		<p><strong>Outcome:</strong> %s</p>
	`, listingTitle, outcome)

	return s.SendEmail(email, subject, body)
}
