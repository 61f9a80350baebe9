package mail

import (
	"strings"
	"testing"
	"time"
)

func TestVerification(t *testing.T) {
	msg := Verification("reader@example.edu", "Sam", "https://news.example.edu/v1/email/verify/x/y?expires=1", 72*time.Hour)
	if len(msg.To) != 1 || msg.To[0] != "reader@example.edu" {
		t.Fatalf("To = %v", msg.To)
	}
	if !strings.Contains(msg.Body, "https://news.example.edu/v1/email/verify/x/y?expires=1") {
		t.Fatal("body missing verification link")
	}
	if !strings.Contains(msg.Body, "3 days") {
		t.Fatalf("body missing readable expiry: %q", msg.Body)
	}
}

func TestPasswordReset(t *testing.T) {
	msg := PasswordReset("reader@example.edu", "Sam", "https://news.example.edu/reset?token=abc", time.Hour)
	if !strings.Contains(msg.Body, "token=abc") {
		t.Fatal("body missing reset link")
	}
	if !strings.Contains(msg.Body, "1 hour") {
		t.Fatalf("body missing expiry: %q", msg.Body)
	}
}

func TestContactRelays(t *testing.T) {
	t.Run("feedback carries sender and subject", func(t *testing.T) {
		msg := Feedback("editors@example.edu", "Sam", "sam@example.edu", "Typo on front page", "Second paragraph.")
		if msg.To[0] != "editors@example.edu" {
			t.Fatalf("To = %v", msg.To)
		}
		if !strings.Contains(msg.Subject, "Typo on front page") {
			t.Fatalf("Subject = %q", msg.Subject)
		}
		if !strings.Contains(msg.Body, "sam@example.edu") {
			t.Fatal("body missing reply address")
		}
	})

	t.Run("coverage request names the topic", func(t *testing.T) {
		msg := CoverageRequest("editors@example.edu", "Sam", "sam@example.edu", "Robotics final", "Saturday 2pm in the gym.")
		if !strings.Contains(msg.Subject, "Robotics final") {
			t.Fatalf("Subject = %q", msg.Subject)
		}
	})

	t.Run("join request names the applicant", func(t *testing.T) {
		msg := JoinRequest("editors@example.edu", "Sam", "sam@example.edu", "photographer", "I shoot film.")
		if !strings.Contains(msg.Subject, "Sam") {
			t.Fatalf("Subject = %q", msg.Subject)
		}
		if !strings.Contains(msg.Body, "photographer") {
			t.Fatal("body missing role")
		}
	})
}

func TestArticlePublished(t *testing.T) {
	msg := ArticlePublished([]string{"a@example.edu", "b@example.edu"}, "Budget Passes", "https://news.example.edu/articles/budget-passes")
	if len(msg.To) != 2 {
		t.Fatalf("To = %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "Budget Passes") {
		t.Fatalf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "https://news.example.edu/articles/budget-passes") {
		t.Fatal("body missing article url")
	}
}

func TestHumanTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want string
	}{
		{name: "minutes", ttl: 30 * time.Minute, want: "30 minutes"},
		{name: "one hour", ttl: time.Hour, want: "1 hour"},
		{name: "hours", ttl: 12 * time.Hour, want: "12 hours"},
		{name: "one day", ttl: 24 * time.Hour, want: "1 day"},
		{name: "days", ttl: 72 * time.Hour, want: "3 days"},
		{name: "uneven hours stay hours", ttl: 30 * time.Hour, want: "30 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := humanTTL(tt.ttl); got != tt.want {
				t.Fatalf("humanTTL(%v) = %q, want %q", tt.ttl, got, tt.want)
			}
		})
	}
}

func TestSendDisabledIsNoOp(t *testing.T) {
	s := NewSender("", 587, "", "", "no-reply@example.edu")
	if s.Enabled() {
		t.Fatal("sender with no host reported enabled")
	}
	if err := s.Send(Message{To: []string{"a@example.edu"}, Subject: "x", Body: "y"}); err != nil {
		t.Fatalf("Send() on disabled sender = %v", err)
	}
}
