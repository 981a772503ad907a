package mailing

import (
	"strconv"

	"farmxchain/internal/utils"

	"gopkg.in/gomail.v2"
)

type (
	MailConfig struct {
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	Sender interface {
		SendMail(toEmail string, subject string, body string) error
	}

	smtpSender struct {
		config MailConfig
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c MailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPEmail != ""
}

func NewSender(config MailConfig) Sender {
	return &smtpSender{config: config}
}

// NewMessage builds an HTML message from the configured sender.
func NewMessage(config MailConfig, toEmail, subject, body string) *gomail.Message {
	mailer := gomail.NewMessage()
	if config.SMTPSender != "" {
		mailer.SetAddressHeader("From", config.SMTPEmail, config.SMTPSender)
	} else {
		mailer.SetHeader("From", config.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	return mailer
}

func (s *smtpSender) SendMail(toEmail string, subject string, body string) error {
	port, err := strconv.Atoi(s.config.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		s.config.SMTPHost,
		port,
		s.config.SMTPEmail,
		s.config.SMTPPassword,
	)

	return dialer.DialAndSend(NewMessage(s.config, toEmail, subject, body))
}
