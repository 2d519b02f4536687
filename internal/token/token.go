// Package token implements the compact signed-claims token used for access
// and refresh credentials: three dot-separated base64url segments (header,
// claims, HMAC-SHA256 signature). The format is deliberately hand-rolled so
// the wire contract is owned here rather than by a JWT library.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("bad signature")
	ErrExpired      = errors.New("token expired")
)

// Claims is the verified identity carried inside a token. IssuedAt and
// ExpiresAt are whole seconds since epoch.
type Claims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Issue signs claims with secret, stamping iat = now and exp = now + ttl.
func Issue(c Claims, secret []byte, ttlSeconds int64) (string, error) {
	now := time.Now().Unix()
	c.IssuedAt = now
	c.ExpiresAt = now + ttlSeconds

	headerJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	signingInput := encode(headerJSON) + "." + encode(claimsJSON)
	return signingInput + "." + encode(sign(secret, signingInput)), nil
}

// Verify checks structure, signature and expiry, in that order. A token whose
// exp equals the current second is already expired.
func Verify(tok string, secret []byte) (*Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}

	gotSig, err := decode(parts[2])
	if err != nil {
		return nil, ErrMalformed
	}
	if !hmac.Equal(gotSig, sign(secret, parts[0]+"."+parts[1])) {
		return nil, ErrBadSignature
	}

	claimsJSON, err := decode(parts[1])
	if err != nil {
		return nil, ErrMalformed
	}
	var c Claims
	if err := json.Unmarshal(claimsJSON, &c); err != nil {
		return nil, ErrMalformed
	}

	if c.ExpiresAt != 0 && time.Now().Unix() >= c.ExpiresAt {
		return nil, ErrExpired
	}
	return &c, nil
}

func sign(secret []byte, signingInput string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
