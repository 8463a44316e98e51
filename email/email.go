package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email sends plain authenticated SMTP mail.
type Email struct {
	address  string
	password string
	host     string
	port     string
}

func New(address, password, host, port string) *Email {
	return &Email{
		address:  address,
		password: password,
		host:     host,
		port:     port,
	}
}

func (e *Email) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: Health Store <" + e.address + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", e.address, e.password, e.host)
	addr := e.host + ":" + e.port

	if err := smtp.SendMail(addr, auth, e.address, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
