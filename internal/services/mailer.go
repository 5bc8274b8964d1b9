package services

import (
	mail "gopkg.in/mail.v2"
)

// Mailer is the outbound email transport. Callers treat delivery as fire
// and forget; implementations should not retry.
type Mailer interface {
	Send(to string, subject string, body string) error
}

type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(to string, subject string, body string) error {
	message := mail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	dialer := mail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(message)
}
