package mail

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/pkg/errors"
)

// SignupConfirmationContext feeds both the text and HTML bodies of the
// confirmation email.
type SignupConfirmationContext struct {
	ConfirmationURI string
	SiteTitle       string
	SiteURI         string
}

const signupConfirmationText = `Hi,

Someone signed up for {{.SiteTitle}} ({{.SiteURI}}) with this email address.

To confirm the signup, open this link within the next 24 hours:

{{.ConfirmationURI}}

If this wasn't you, you can ignore this message.
`

const signupConfirmationHTML = `<html>
<body>
<p>Hi,</p>
<p>Someone signed up for <a href="{{.SiteURI}}">{{.SiteTitle}}</a> with this email address.</p>
<p>To confirm the signup, open this link within the next 24 hours:</p>
<p><a href="{{.ConfirmationURI}}">{{.ConfirmationURI}}</a></p>
<p>If this wasn't you, you can ignore this message.</p>
</body>
</html>
`

var (
	signupConfirmationTextTmpl = texttemplate.Must(texttemplate.New("signup_confirmation_text").Parse(signupConfirmationText))
	signupConfirmationHTMLTmpl = htmltemplate.Must(htmltemplate.New("signup_confirmation_html").Parse(signupConfirmationHTML))
)

// RenderSignupConfirmation produces the plain-text and HTML bodies.
func RenderSignupConfirmation(ctx SignupConfirmationContext) (body string, htmlBody string, err error) {
	text := strings.Builder{}
	if err := signupConfirmationTextTmpl.Execute(&text, ctx); err != nil {
		return "", "", errors.Wrap(err, "render text body")
	}

	html := strings.Builder{}
	if err := signupConfirmationHTMLTmpl.Execute(&html, ctx); err != nil {
		return "", "", errors.Wrap(err, "render html body")
	}

	return text.String(), html.String(), nil
}
