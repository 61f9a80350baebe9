// Package mail sends the plain-text notifications the newsroom relies on:
// verification and reset links, contact-form relays, and new-article notes
// to subscribers. Delivery is SMTP with STARTTLS when the server offers it.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"herald/internal/fault"
)

// Message is one outbound mail.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages through a single SMTP relay.
type Sender struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSender(host string, port int, user, pass, from string) *Sender {
	return &Sender{host: host, port: port, user: user, pass: pass, from: from}
}

// Enabled reports whether a relay is configured. Callers treat a disabled
// sender as a no-op rather than an error.
func (s *Sender) Enabled() bool { return s.host != "" }

// Send delivers one message. Errors are Dependency faults so handlers can
// decide whether delivery failure is fatal for the request.
func (s *Sender) Send(msg Message) error {
	if !s.Enabled() {
		return nil
	}
	if len(msg.To) == 0 {
		return fault.New(fault.Validation, "mail has no recipients")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	if err := smtp.SendMail(addr, auth, s.from, msg.To, []byte(b.String())); err != nil {
		return fault.Wrap(fault.Dependency, "smtp delivery failed", err)
	}
	return nil
}
