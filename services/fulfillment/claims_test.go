package fulfillment

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestDecodeUnverifiedClaims(t *testing.T) {

	t.Run("Claims come out without signature verification", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "driver-17",
			"iss": "https://idp.example.com",
			"exp": expiry.Unix(),
		}).SignedString([]byte("some-key-the-relay-never-sees"))
		assert.NoError(t, err)

		claims, err := DecodeUnverifiedClaims(token)
		assert.NoError(t, err)
		assert.Equal(t, "driver-17", claims.Subject)
		assert.Equal(t, "https://idp.example.com", claims.Issuer)
		assert.NotNil(t, claims.ExpiresAt)
		assert.True(t, claims.ExpiresAt.Equal(expiry))
	})

	t.Run("Opaque token is an error, not a panic", func(t *testing.T) {
		_, err := DecodeUnverifiedClaims("not-a-jwt")
		assert.Error(t, err)
	})
}
