// Package auth issues and verifies the session and password reset tokens
// used by the API, and hashes account passwords.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose values distinguish session tokens from single purpose reset tokens
// so one can never be replayed as the other.
const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

// Claims is the JWT payload carried by every issued token
type Claims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens
type TokenManager struct {
	secret        []byte
	sessionTTL    time.Duration
	resetTokenTTL time.Duration
}

// NewTokenManager creates a token manager with the given signing secret and TTLs
func NewTokenManager(secret string, sessionTTL, resetTokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		resetTokenTTL: resetTokenTTL,
	}
}

// IssueSession creates a signed session token for the given user
func (m *TokenManager) IssueSession(userID, email string) (string, error) {
	return m.issue(userID, email, PurposeSession, m.sessionTTL)
}

// IssuePasswordReset creates a short lived token for the password reset flow
func (m *TokenManager) IssuePasswordReset(userID, email string) (string, error) {
	return m.issue(userID, email, PurposePasswordReset, m.resetTokenTTL)
}

func (m *TokenManager) issue(userID, email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifySession parses a session token and returns its claims
func (m *TokenManager) VerifySession(tokenString string) (*Claims, error) {
	return m.verify(tokenString, PurposeSession)
}

// VerifyPasswordReset parses a password reset token and returns its claims
func (m *TokenManager) VerifyPasswordReset(tokenString string) (*Claims, error) {
	return m.verify(tokenString, PurposePasswordReset)
}

func (m *TokenManager) verify(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	// Tokens issued before purposes were introduced carry none and count as
	// session tokens.
	got := claims.Purpose
	if got == "" {
		got = PurposeSession
	}
	if got != purpose {
		return nil, fmt.Errorf("token purpose mismatch")
	}
	return claims, nil
}
