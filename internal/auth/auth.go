// Package auth verifies the bearer credentials presented to the ingestion
// endpoint: either the pre-shared demo token or a signed session token that
// resolves to a real user identity.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"fleet-ops-backend/config"
)

// ErrUnauthorized is returned for any missing, malformed or unverifiable
// credential. Callers must not process the request further.
var ErrUnauthorized = errors.New("unauthorized")

// DemoUserID is the identity attributed to requests using the demo token.
const DemoUserID = "demo-user"

// Verifier checks Authorization headers.
type Verifier struct {
	demoToken     string
	sessionSecret []byte
}

// NewVerifier creates a Verifier from the auth configuration.
func NewVerifier(cfg *config.AuthConfig) *Verifier {
	return &Verifier{
		demoToken:     cfg.DemoToken,
		sessionSecret: []byte(cfg.SessionSecret),
	}
}

// Verify checks a raw Authorization header value and returns the caller's
// user id. The demo token short-circuits; anything else must be a valid
// HS256 session JWT carrying a subject.
func (v *Verifier) Verify(authHeader string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", ErrUnauthorized
	}
	token := authHeader[len(prefix):]
	if token == "" {
		return "", ErrUnauthorized
	}

	if v.demoToken != "" && token == v.demoToken {
		return DemoUserID, nil
	}

	if len(v.sessionSecret) == 0 {
		return "", ErrUnauthorized
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.sessionSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrUnauthorized
	}
	return subject, nil
}
