// Package notification builds the admin alert and the submitter acknowledgment
// for an accepted contact submission.
package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	edomain "github.com/lom3e/Formingo/internal/email/domain"
)

// Submission is the data the messages are built from.
type Submission struct {
	Name       string
	Email      string
	Message    string
	ReceivedAt time.Time
}

// Sender describes the tenant the messages are sent for.
type Sender struct {
	Brand        string // shown in subjects and signatures
	AdminAddress string // receives the admin alert
	ReplyAddress string // tenant's own delivery address, quoted in the acknowledgment
}

const (
	userSubject = "We received your message"
	timeLayout  = "2006-01-02 15:04:05 MST"
)

var userHTML = template.Must(template.New("ack").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f8f9fa;">
  <div style="max-width: 600px; margin: auto; background-color: #ffffff; padding: 30px; border-radius: 8px;">
    <h2 style="color: #2c3e50;">Hi {{.Name}},</h2>
    <p>Thanks for contacting us through the <strong>{{.Brand}}</strong> form!</p>
    <p>We received your message:</p>
    <blockquote style="background: #f1f1f1; padding: 15px; border-left: 5px solid #007bff;">{{.Message}}</blockquote>
    <p>We will get back to you as soon as possible.{{if .ReplyAddress}} If it is urgent, write to us at <a href="mailto:{{.ReplyAddress}}">{{.ReplyAddress}}</a>.{{end}}</p>
    <hr style="margin: 30px 0;">
    <p style="font-size: 14px; color: #6c757d;">{{.Brand}} &middot; This is an automated message, please do not reply.</p>
  </div>
</div>
`))

type userHTMLData struct {
	Name         string
	Brand        string
	ReplyAddress string
	Message      template.HTML
}

// Compose returns the admin alert and the submitter acknowledgment. The
// acknowledgment asks for a hidden copy to the sending tenant.
func Compose(sub Submission, from Sender) (admin, user edomain.Message) {
	text := normalizeNewlines(sub.Message)
	received := sub.ReceivedAt
	if received.IsZero() {
		received = time.Now()
	}

	admin = edomain.NewMessage(
		from.AdminAddress,
		fmt.Sprintf("New message from %s", sub.Name),
		fmt.Sprintf("You have received a new message:\n\nName: %s\nEmail: %s\nReceived: %s\nMessage:\n%s\n",
			sub.Name, sub.Email, received.UTC().Format(timeLayout), text),
	)

	user = edomain.NewMessage(
		sub.Email,
		userSubject,
		fmt.Sprintf("Hi %s,\n\nThanks for writing to us! We received your message and will reply as soon as possible.\n\nYour message:\n%s\n\nThe %s team\n",
			sub.Name, text, from.Brand),
	).WithBlindCopyToSender()

	// The plain-text part is complete on its own; a template failure only drops the HTML part.
	if html, err := renderUserHTML(sub.Name, text, from); err == nil {
		user = user.WithHTML(html)
	}
	return admin, user
}

func renderUserHTML(name, message string, from Sender) (string, error) {
	var buf bytes.Buffer
	err := userHTML.Execute(&buf, userHTMLData{
		Name:         name,
		Brand:        from.Brand,
		ReplyAddress: from.ReplyAddress,
		Message:      MessageHTML(message),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MessageHTML escapes a free-text message and turns its line breaks into <br>.
func MessageHTML(message string) template.HTML {
	escaped := template.HTMLEscapeString(normalizeNewlines(message))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
