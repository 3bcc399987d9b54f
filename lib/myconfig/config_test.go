package myconfig

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("OAUTH_CLIENT_ID", "client-id")
	t.Setenv("OAUTH_CLIENT_SECRET", "client-secret")
	t.Setenv("OAUTH_AUTH_URL", "https://idp.example.com/authorize")
	t.Setenv("OAUTH_TOKEN_URL", "https://idp.example.com/token")
	t.Setenv("OAUTH_REDIRECT_URI", "https://relay.example.com/callback")
	t.Setenv("OAUTH_SCOPE", "restlets rest_webservices")
	t.Setenv("DASHBOARD_URL", "https://app.example.com/dashboard")
	t.Setenv("COOKIE_HASH_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("FULFILLMENT_API_BASE_URL", "https://erp.example.com/services/rest")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("S3_ACCESS_KEY_ID", "access")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_PUBLIC_ENDPOINT", "https://cdn.example.com")
	t.Setenv("S3_BUCKET", "proof-of-delivery")
}

func TestLoad(t *testing.T) {

	t.Run("Defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		assert.NoError(t, err)

		assert.Equal(t, "authrelay", cfg.ServiceName)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, TokenDeliveryRedirect, cfg.Flow.TokenDelivery)
		assert.Equal(t, SecretBackendSession, cfg.Secrets.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Secrets.TTL)
		assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
		assert.Equal(t, uint(5), cfg.Store.ConnectAttempts)
		assert.Equal(t, "pictures", cfg.S3.PicturesFolder)
		assert.Equal(t, "signatures", cfg.S3.SignaturesFolder)

		sameSite, err := cfg.Secrets.SameSite()
		assert.NoError(t, err)
		assert.Equal(t, http.SameSiteNoneMode, sameSite)
	})

	t.Run("Missing required value", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("OAUTH_CLIENT_ID", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Redirect delivery requires dashboard url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DASHBOARD_URL", "")

		_, err := Load()
		assert.ErrorContains(t, err, "DASHBOARD_URL")
	})

	t.Run("Session delivery requires session secret store", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOKEN_DELIVERY", "session")
		t.Setenv("SECRET_STORE", "cookie")

		_, err := Load()
		assert.ErrorContains(t, err, "SECRET_STORE")
	})

	t.Run("Short cookie hash key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("COOKIE_HASH_KEY", "too-short")

		_, err := Load()
		assert.ErrorContains(t, err, "COOKIE_HASH_KEY")
	})

	t.Run("Unknown samesite", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("COOKIE_SAMESITE", "sideways")

		_, err := Load()
		assert.ErrorContains(t, err, "COOKIE_SAMESITE")
	})

	t.Run("Unknown extra variables are ignored", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SOME_UNRELATED_SETTING", "whatever")

		_, err := Load()
		assert.NoError(t, err)
	})
}
