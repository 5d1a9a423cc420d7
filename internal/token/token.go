package token

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// GuestPrefix marks locally synthesised guest session tokens. They stand in
// for a real credential, so they are never sent as a bearer token.
const GuestPrefix = "guest_"

// IsExpired reports whether a three-part JWT's exp claim is at or before
// now. Anything that fails to decode — wrong segment count, bad base64,
// bad JSON, missing exp — counts as expired (fail closed).
func IsExpired(tok string, now time.Time) bool {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return true
	}
	payload, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return true
	}
	var claims struct {
		Exp *int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == nil {
		return true
	}
	return !time.Unix(*claims.Exp, 0).After(now)
}

// NewGuestToken produces a guest session token from 32 bytes of a
// cryptographically strong random source, hex-encoded.
func NewGuestToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic("token: reading random source: " + err.Error())
	}
	return GuestPrefix + hex.EncodeToString(buf)
}

// IsGuest reports whether tok is a locally synthesised guest token.
func IsGuest(tok string) bool {
	return strings.HasPrefix(tok, GuestPrefix)
}
