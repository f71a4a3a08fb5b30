// Package auth obtains, decodes, and refreshes Commerce Layer access tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a Commerce Layer access token.
type Claims struct {
	Organization struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	} `json:"organization"`
	Application struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Public bool   `json:"public"`
	} `json:"application"`
	Scope string `json:"scope,omitempty"`
	Test  bool   `json:"test"`
	jwt.RegisteredClaims
}

// Expiry returns the token's expiry time.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Token is a bearer string and its decoded claims.
type Token struct {
	Raw    string
	Claims *Claims
}

// ErrNoExpiry is returned for tokens without an exp claim.
var ErrNoExpiry = errors.New("access token has no expiry")

// DecodeAccessToken decodes a token without verifying its signature. The token comes
// straight from the issuer over TLS; the client only needs exp and the application kind.
func DecodeAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, ErrNoExpiry
	}
	return claims, nil
}

// ParseToken decodes raw into a Token.
func ParseToken(raw string) (Token, error) {
	claims, err := DecodeAccessToken(raw)
	if err != nil {
		return Token{}, err
	}
	return Token{Raw: raw, Claims: claims}, nil
}
