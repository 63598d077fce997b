package notifications

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Mail subjects.
const (
	SubjectActivation = "Activate your account"
	SubjectWelcome    = "Welcome aboard"
	SubjectRecovery   = "Reset your password"
)

// Composer renders the account emails. Links point at BaseURL.
type Composer struct {
	BaseURL string
	From    string
}

type mailData struct {
	GivenName string
	Link      string
}

// Activation renders the email carrying the activation link.
func (c Composer) Activation(to, givenName, tokenID string) (Message, error) {
	return c.render("activation.html", SubjectActivation, to, mailData{
		GivenName: givenName,
		Link:      c.link("/activate", to, tokenID),
	})
}

// Welcome renders the email sent once the account is active.
func (c Composer) Welcome(to, givenName string) (Message, error) {
	return c.render("welcome.html", SubjectWelcome, to, mailData{GivenName: givenName, Link: c.BaseURL})
}

// Recovery renders the email carrying the password reset link.
func (c Composer) Recovery(to, givenName, tokenID string) (Message, error) {
	return c.render("recovery.html", SubjectRecovery, to, mailData{
		GivenName: givenName,
		Link:      c.link("/recover", to, tokenID),
	})
}

func (c Composer) link(path, email, tokenID string) string {
	q := url.Values{}
	q.Set("email_address", email)
	q.Set("token", tokenID)
	return strings.TrimRight(c.BaseURL, "/") + path + "?" + q.Encode()
}

func (c Composer) render(name, subject, to string, data mailData) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, From: c.From, Subject: subject, HTML: buf.String()}, nil
}
