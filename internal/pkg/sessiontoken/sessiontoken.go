package sessiontoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints and verifies the signed session cookie. The cookie carries
// only the session id; all session state lives server-side.
type Signer struct {
	secret   []byte
	lifetime time.Duration
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewSigner(secret string, lifetime time.Duration) *Signer {
	return &Signer{secret: []byte(secret), lifetime: lifetime}
}

// Sign returns an HS256 token embedding the session id.
func (s *Signer) Sign(sessionID string) (string, error) {
	now := time.Now()
	c := claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify validates the token and returns the embedded session id.
func (s *Signer) Verify(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || c.SessionID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return c.SessionID, nil
}
