package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed "templates"
var templateFS embed.FS

var (
	PaymentNotificationTemplate = "payment_notification.tmpl"
)

type Client interface {
	Send(option *MailOption, data any) error
}

type MailOption struct {
	TemplateFile string
	To           []string
	ReplyTo      string
}

// Render executes the "subject" and "body" blocks of templateFile.
func Render(templateFile string, data any) (subject, body string, err error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	subjectBuf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subjectBuf, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}

	bodyBuf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(bodyBuf, "body", data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}

	return subjectBuf.String(), bodyBuf.String(), nil
}
