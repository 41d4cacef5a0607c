// Package mail is the outbound-mail collaborator. The only consumer is the
// signup-confirmation task; failures are surfaced as TransportError and the
// caller decides what to do with them.
package mail

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/config"
)

type Message struct {
	Subject  string
	Body     string
	HTMLBody string
	To       string
	From     string
}

type Mailer interface {
	Send(m Message) error
}

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	host string
}

func NewSMTPMailer(cfg *config.Config) Mailer {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: auth,
		host: cfg.SMTPHost,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	payload := buildMIME(msg)
	if err := smtp.SendMail(m.addr, m.auth, msg.From, []string{msg.To}, payload); err != nil {
		return &apperr.TransportError{Err: err}
	}
	return nil
}

const mimeBoundary = "recipebox-alt"

// buildMIME renders a multipart/alternative message with the plain-text
// part first so clients that cannot render HTML fall back cleanly.
func buildMIME(msg Message) []byte {
	b := strings.Builder{}
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	if msg.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(msg.HTMLBody)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
