package mail

import (
	"fmt"
	"strings"
	"time"
)

// Verification builds the email-verification message for a new account.
func Verification(to, name, link string, ttl time.Duration) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("Welcome to Herald. Please confirm your email address by opening the link below:\n\n")
	fmt.Fprintf(&b, "%s\n\n", link)
	fmt.Fprintf(&b, "The link expires in %s. If you did not create this account you can ignore this message.\n", humanTTL(ttl))
	return Message{To: []string{to}, Subject: "Verify your Herald account", Body: b.String()}
}

// PasswordReset builds the reset message. The link carries the one-time token.
func PasswordReset(to, name, link string, ttl time.Duration) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("Someone requested a password reset for your Herald account. Open the link below to choose a new password:\n\n")
	fmt.Fprintf(&b, "%s\n\n", link)
	fmt.Fprintf(&b, "The link expires in %s. If this was not you, no action is needed.\n", humanTTL(ttl))
	return Message{To: []string{to}, Subject: "Reset your Herald password", Body: b.String()}
}

// Feedback relays a reader's feedback form to the editors inbox.
func Feedback(editors, fromName, fromEmail, subject, body string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Feedback from %s <%s>\n\n", fromName, fromEmail)
	b.WriteString(body)
	b.WriteString("\n")
	return Message{To: []string{editors}, Subject: "[Feedback] " + subject, Body: b.String()}
}

// CoverageRequest relays a request for the paper to cover an event or topic.
func CoverageRequest(editors, fromName, fromEmail, topic, details string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Coverage request from %s <%s>\n\n", fromName, fromEmail)
	fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	b.WriteString(details)
	b.WriteString("\n")
	return Message{To: []string{editors}, Subject: "[Coverage] " + topic, Body: b.String()}
}

// JoinRequest relays a membership application.
func JoinRequest(editors, fromName, fromEmail, role, motivation string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Membership application from %s <%s>\n\n", fromName, fromEmail)
	fmt.Fprintf(&b, "Interested role: %s\n\n", role)
	b.WriteString(motivation)
	b.WriteString("\n")
	return Message{To: []string{editors}, Subject: "[Join] " + fromName, Body: b.String()}
}

// SubscribeConfirmation welcomes a new newsletter subscriber.
func SubscribeConfirmation(to string) Message {
	body := "You are now subscribed to the Herald newsletter.\n\n" +
		"You will get a short note whenever a new article is published. " +
		"Reply to this message if you want to unsubscribe.\n"
	return Message{To: []string{to}, Subject: "Welcome to the Herald newsletter", Body: body}
}

// ArticlePublished is the newsletter note sent when an article goes live.
func ArticlePublished(to []string, title, url string) Message {
	var b strings.Builder
	b.WriteString("A new article is up on Herald:\n\n")
	fmt.Fprintf(&b, "  %s\n  %s\n\n", title, url)
	b.WriteString("Reply to this message if you want to unsubscribe.\n")
	return Message{To: to, Subject: "New on Herald: " + title, Body: b.String()}
}

func humanTTL(ttl time.Duration) string {
	if h := int(ttl.Hours()); h >= 24 && h%24 == 0 {
		d := h / 24
		if d == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", d)
	}
	if h := int(ttl.Hours()); h >= 1 {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(ttl.Minutes()))
}
