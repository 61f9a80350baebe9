package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"herald/internal/fault"
)

// dummyHash is compared against when the email is unknown so that login
// latency does not reveal whether an account exists.
var dummyHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("herald-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fault.Wrap(fault.Internal, "hash password", err)
	}
	return string(h), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnCompare performs a bcrypt comparison against a throwaway hash. Called on
// the unknown-email path so both login branches cost one bcrypt verify.
func BurnCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
}

// ValidPassword enforces the registration policy: at least 8 characters with
// an upper-case letter, a lower-case letter, and a digit.
func ValidPassword(plain string) bool {
	if len(plain) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// NewResetToken creates a cryptographically random token. The raw value is
// mailed to the user; only the hash is stored.
func NewResetToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fault.Wrap(fault.Internal, "generate token", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, HashToken(raw), nil
}

// HashToken computes the SHA-256 hash of a token as a hex string.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
