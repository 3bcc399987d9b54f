package fulfillment

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are read from a JWT-shaped bearer token WITHOUT
// verifying its signature. They are good enough for request logging and
// display, and must never feed an authorization decision: the downstream
// API is the one that actually verifies the token.
type IdentityClaims struct {
	Subject   string
	Issuer    string
	ExpiresAt *time.Time
}

func DecodeUnverifiedClaims(token string) (IdentityClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return IdentityClaims{}, fmt.Errorf("error decoding token claims: %s", err)
	}

	result := IdentityClaims{}
	result.Subject, _ = claims.GetSubject()
	result.Issuer, _ = claims.GetIssuer()

	expiresAt, err := claims.GetExpirationTime()
	if err == nil && expiresAt != nil {
		result.ExpiresAt = &expiresAt.Time
	}

	return result, nil
}
