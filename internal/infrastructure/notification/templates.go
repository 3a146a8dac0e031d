package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
)

// Subjects of the account mails
const (
	SubjectPasswordReset = "[SCG] - Password Reset Request"
	SubjectWelcome       = "[SCG] - Welcome to SCG Portal"
)

// LinkData fills the account mail templates
type LinkData struct {
	FirstName string
	Email     string
	Link      string
}

var resetText = texttemplate.Must(texttemplate.New("reset").Parse(`Hello {{if .FirstName}}{{.FirstName}}{{else}}{{.Email}}{{end}},

We received a request to reset the password of your SCG Portal account.
Open the link below to choose a new password:

{{.Link}}

The link can be used once. If you did not ask for a reset you can ignore this message.
`))

var resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(`<p>Hello {{if .FirstName}}{{.FirstName}}{{else}}{{.Email}}{{end}},</p>
<p>We received a request to reset the password of your SCG Portal account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link can be used once. If you did not ask for a reset you can ignore this message.</p>
`))

var welcomeText = texttemplate.Must(texttemplate.New("welcome").Parse(`Hello {{if .FirstName}}{{.FirstName}}{{else}}{{.Email}}{{end}},

An SCG Portal account was created for {{.Email}}.
Open the link below to set your password and activate the account:

{{.Link}}
`))

var welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome").Parse(`<p>Hello {{if .FirstName}}{{.FirstName}}{{else}}{{.Email}}{{end}},</p>
<p>An SCG Portal account was created for <strong>{{.Email}}</strong>.</p>
<p><a href="{{.Link}}">Set your password</a> to activate the account.</p>
`))

// ResetLink builds the frontend link that carries a reset token
func ResetLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// PasswordResetMessage renders the password reset mail
func PasswordResetMessage(to string, data LinkData) (Message, error) {
	return render(to, SubjectPasswordReset, resetText, resetHTML, data)
}

// WelcomeMessage renders the mail sent to a newly created user
func WelcomeMessage(to string, data LinkData) (Message, error) {
	return render(to, SubjectWelcome, welcomeText, welcomeHTML, data)
}

func render(to, subject string, text *texttemplate.Template, html *htmltemplate.Template, data LinkData) (Message, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s text: %w", text.Name(), err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s html: %w", html.Name(), err)
	}
	return Message{To: []string{to}, Subject: subject, Text: tb.String(), HTML: hb.String()}, nil
}
