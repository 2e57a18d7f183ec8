package relay

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Zachkp/portfolio/internal/contact"
)

var emailFuncs = template.FuncMap{
	// breaks escapes s and turns newlines into <br>.
	"breaks": func(s string) template.HTML {
		escaped := template.HTMLEscapeString(s)
		escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>")) //nolint:gosec // input escaped above
	},
}

const messageBlock = `<div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 10px 0;">{{breaks .Message}}</div>`

var ownerTmpl = template.Must(template.New("owner").Funcs(emailFuncs).Parse(`<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Message:</strong></p>
` + messageBlock + `
<hr>
<p><em>This message was sent from your portfolio contact form.</em></p>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(emailFuncs).Parse(`<h1>Thank you for reaching out, {{.Name}}!</h1>
<p>I have received your message and will get back to you as soon as possible.</p>
<p>Here's a copy of your message:</p>
` + messageBlock + `
<p>Best regards,<br>{{.OwnerName}}</p>
`))

type emailData struct {
	contact.Submission
	OwnerName string
}

func render(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("relay: render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
