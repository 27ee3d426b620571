package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

type SMTPClient struct {
	fromEmail string
	smtpAddr  string
	smtpPort  int
	username  string
	password  string
	logger    *zap.SugaredLogger
}

func NewSMTPClient(fromEmail, smtpAddr, username, password string, smtpPort int, logger *zap.SugaredLogger) *SMTPClient {
	return &SMTPClient{
		fromEmail: fromEmail,
		smtpAddr:  smtpAddr,
		smtpPort:  smtpPort,
		username:  username,
		password:  password,
		logger:    logger,
	}
}

func (c *SMTPClient) message(option *MailOption, data any) (*gomail.Message, error) {
	if option == nil {
		return nil, fmt.Errorf("nil mail option received")
	}

	if len(option.To) == 0 {
		return nil, fmt.Errorf("mail has no recipients")
	}

	subject, body, err := Render(option.TemplateFile, data)
	if err != nil {
		return nil, err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", c.fromEmail)
	message.SetHeader("To", option.To...)
	message.SetHeader("Subject", subject)
	if option.ReplyTo != "" {
		message.SetHeader("Reply-To", option.ReplyTo)
	}

	message.SetBody("text/plain", body)

	return message, nil
}

func (c *SMTPClient) Send(option *MailOption, data any) error {
	message, err := c.message(option, data)
	if err != nil {
		return err
	}

	dialer := gomail.NewDialer(c.smtpAddr, c.smtpPort, c.username, c.password)
	dialer.StartTLSPolicy = gomail.MandatoryStartTLS

	if err := dialer.DialAndSend(message); err != nil {
		c.logger.Errorw("Failed to send email", "email", option.To, "error", err)
		return err
	}

	c.logger.Infow("Email sent", "email", option.To)
	return nil
}
