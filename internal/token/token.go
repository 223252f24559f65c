// Package token decodes the payload segment of a server-issued JWT.
//
// The client never verifies the signature; that stays on the server. A
// decoded payload drives routing and display only, never authorization.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// Claims are the fields the app consumes from a token payload.
// Exp is optional; zero means the token carries no expiry.
type Claims struct {
	UserID   int32  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Exp      int64  `json:"exp,omitempty"`
}

// HasIdentity reports whether the claims carry a complete identity.
func (c Claims) HasIdentity() bool {
	return c.UserID != 0 && c.Username != "" && c.Email != ""
}

// ExpiredAt reports whether the claims expired before the given unix time.
// Claims without an exp never expire.
func (c Claims) ExpiredAt(nowUnix int64) bool {
	return c.Exp != 0 && c.Exp < nowUnix
}

// Decode extracts the claims from the payload segment of a dot-delimited
// token. It is a pure function: same token in, same claims out, no side
// effects. Every failure mode returns ErrMalformedToken.
func Decode(tok string) (Claims, error) {
	segments := strings.Split(tok, ".")
	if len(segments) < 2 {
		return Claims{}, fmt.Errorf("%w: expected header.payload.signature, got %d segment(s)", pkgerrors.ErrMalformedToken, len(segments))
	}

	raw, err := decodeSegment(segments[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: base64 payload: %v", pkgerrors.ErrMalformedToken, err)
	}

	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: payload json: %v", pkgerrors.ErrMalformedToken, err)
	}
	return claims, nil
}

// decodeSegment restores the standard base64 alphabet from the URL-safe
// one, re-pads, and decodes.
func decodeSegment(seg string) ([]byte, error) {
	std := strings.ReplaceAll(seg, "-", "+")
	std = strings.ReplaceAll(std, "_", "/")
	if m := len(std) % 4; m != 0 {
		std += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(std)
}
