package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendMail(to, subject, htmlBody string) error
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type EmailService struct {
	from   string
	dialer *gomail.Dialer
}

func NewEmailService(cfg EmailConfig) *EmailService {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &EmailService{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (es *EmailService) SendMail(to, subject, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient is required")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func bookingRequestEmail(name, date, phone string) (string, string) {
	subject := fmt.Sprintf("New booking request for %s", name)
	body := fmt.Sprintf(`<p>You have a new booking request for <strong>%s</strong> on <strong>%s</strong>.</p>
<p>Contact phone: %s</p>
<p>Open Evently to accept or reject it.</p>`, name, date, phone)
	return subject, body
}
