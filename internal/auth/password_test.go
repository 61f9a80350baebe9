package auth

import "testing"

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "good password", input: "Str0ngPass", want: true},
		{name: "too short", input: "Ab1", want: false},
		{name: "missing upper", input: "weakpass1", want: false},
		{name: "missing lower", input: "WEAKPASS1", want: false},
		{name: "missing digit", input: "WeakPassword", want: false},
		{name: "unicode letters count", input: "Straße123", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPassword(tt.input); got != tt.want {
				t.Fatalf("ValidPassword(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ngPass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "Str0ngPass" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "Str0ngPass") {
		t.Fatal("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "WrongPass1") {
		t.Fatal("CheckPassword accepted the wrong password")
	}
}

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken() error = %v", err)
	}
	if raw == "" || hash == "" {
		t.Fatal("empty token or hash")
	}
	if raw == hash {
		t.Fatal("raw token must not equal its stored hash")
	}
	if HashToken(raw) != hash {
		t.Fatal("HashToken(raw) does not reproduce the stored hash")
	}

	raw2, hash2, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken() error = %v", err)
	}
	if raw == raw2 || hash == hash2 {
		t.Fatal("consecutive tokens collided")
	}
}
