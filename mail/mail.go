package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sender dispatches emails
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPConfig stores mail server configuration
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST,required"`
	Port     int    `env:"SMTP_PORT,required"`
	User     string `env:"SMTP_USER,required"`
	Password string `env:"SMTP_PASS,required"`
	From     string `env:"SMTP_FROM" envDefault:"Natours <hello@natours.io>"`
}

type smtpSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a Sender backed by a plain SMTP server
func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(_ context.Context, m Message) error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)

	msg := "From: " + s.cfg.From + "\r\n" +
		"To: " + m.To + "\r\n" +
		"Subject: " + m.Subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		m.Text + "\r\n"

	a := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, a, s.cfg.User, []string{m.To}, []byte(msg)); err != nil {
		return fmt.Errorf("can't send email to %s: %w", m.To, err)
	}

	return nil
}
