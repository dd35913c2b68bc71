// services/token_display.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenDisplay is what a scanned token claims about itself. It is decoded
// WITHOUT signature verification and is for rendering only; acceptance is
// decided by the remote validator.
type TokenDisplay struct {
	EventID   string
	EventName string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

type displayClaims struct {
	jwt.RegisteredClaims
	EventID   string `json:"event_id"`
	EventName string `json:"event_name"`
}

// DecodeTokenForDisplay reads the unverified claims of a JWT-shaped token.
func DecodeTokenForDisplay(token string) (TokenDisplay, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenDisplay{}, ErrEmptyToken
	}

	var claims displayClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenDisplay{}, fmt.Errorf("decode token for display: %w", err)
	}

	out := TokenDisplay{
		EventID:   claims.EventID,
		EventName: strings.TrimSpace(claims.EventName),
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		out.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		out.ExpiresAt = &t
	}
	return out, nil
}
