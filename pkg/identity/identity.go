// Package identity derives a best-effort label from a bearer token. The
// label is observability metadata only: resolution never rejects a request
// and carries no authorization weight — backends verify the same token
// themselves on routes that require it.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	LabelAnonymous    = "anonymous"
	LabelInvalidToken = "invalid_token"
)

// Identity is the soft identity attributed to a request.
type Identity struct {
	Label    string
	Verified bool
}

// Resolve inspects an Authorization header. A missing header or one
// without a bearer prefix yields anonymous; any verification failure
// yields invalid_token; success yields the token's username claim.
func Resolve(authorization, secret string, now time.Time) Identity {
	header := strings.TrimSpace(authorization)
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return Identity{Label: LabelAnonymous}
	}
	username, err := verifyHS256(strings.TrimSpace(header[len("Bearer "):]), secret, now)
	if err != nil {
		return Identity{Label: LabelInvalidToken}
	}
	return Identity{Label: username, Verified: true}
}

func verifyHS256(token, secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("invalid token format")
	}
	headerRaw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", err
	}
	payloadRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", err
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return "", err
	}
	if strings.ToUpper(header.Alg) != "HS256" {
		return "", errors.New("unsupported alg")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", errors.New("signature mismatch")
	}
	var claims struct {
		Username string `json:"username"`
		Exp      int64  `json:"exp"`
		Nbf      int64  `json:"nbf"`
	}
	if err := json.Unmarshal(payloadRaw, &claims); err != nil {
		return "", err
	}
	if claims.Exp != 0 && now.Unix() >= claims.Exp {
		return "", errors.New("token expired")
	}
	if claims.Nbf != 0 && now.Unix() < claims.Nbf {
		return "", errors.New("token not active")
	}
	if strings.TrimSpace(claims.Username) == "" {
		return "", errors.New("username claim required")
	}
	return claims.Username, nil
}
