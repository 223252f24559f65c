// Package auth issues and verifies the HS256 tokens the univent app logs
// in with. The payload carries userId, username and email so the mobile
// client can derive its session identity from the token alone.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/harxxhilgg/univent/internal/models"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// DefaultTokenTTL matches the 7-day expiry the app was shipped with.
const DefaultTokenTTL = 7 * 24 * time.Hour

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Generate signs a token for the given user.
func (t *TokenIssuer) Generate(user *models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("jwt secret not set")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"userId":   user.ID,
		"username": user.Username,
		"email":    user.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, enforcing the HMAC family.
func (t *TokenIssuer) Validate(tokenStr string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Method.Alg())
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrMalformedToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, pkgerrors.ErrMalformedToken
	}
	return claims, nil
}
