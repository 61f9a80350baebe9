package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"herald/internal/fault"
)

// TokenManager issues and validates the HS256 bearer tokens handed out by
// login. The token is opaque to clients; the role claim lets the middleware
// build an Identity without a user lookup per request.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a token manager. The secret should be at least 32
// bytes for HS256.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Issue creates a signed token with the user ID as subject and the role as a
// custom claim.
func (m *TokenManager) Issue(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fault.Wrap(fault.Internal, "sign token", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns the identity it encodes.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Anonymous, fault.New(fault.Unauthenticated, "missing token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fault.Newf(fault.Unauthenticated, "unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Anonymous, fault.Wrap(fault.Unauthenticated, "invalid token", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return Anonymous, fault.New(fault.Unauthenticated, "invalid token claims")
	}
	if claims.Issuer != m.issuer {
		return Anonymous, fault.New(fault.Unauthenticated, "invalid token issuer")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Anonymous, fault.Wrap(fault.Unauthenticated, "invalid token subject", err)
	}

	return Identity{UserID: userID, Role: claims.Role}, nil
}
