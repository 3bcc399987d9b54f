package myconfig

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	TokenDeliveryRedirect = "redirect"
	TokenDeliverySession  = "session"

	SecretBackendSession = "session"
	SecretBackendCookie  = "cookie"

	StoreBackendRedis = "redis"
	StoreBackendInmem = "inmem"
)

type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"authrelay"`
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"8080"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"60"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	OAuth       OAuthConfig
	Flow        FlowConfig
	Secrets     SecretsConfig
	Store       StoreConfig
	Fulfillment FulfillmentConfig
	S3          S3Config
}

type OAuthConfig struct {
	ClientID     string `env:"OAUTH_CLIENT_ID,required"`
	ClientSecret string `env:"OAUTH_CLIENT_SECRET,required"`
	AuthURL      string `env:"OAUTH_AUTH_URL,required"`
	TokenURL     string `env:"OAUTH_TOKEN_URL,required"`
	RedirectURI  string `env:"OAUTH_REDIRECT_URI,required"`
	Scope        string `env:"OAUTH_SCOPE,required"`
}

// FlowConfig selects how the access token reaches the caller after the
// callback leg. Redirect delivery exposes the token in browser history;
// that tradeoff is a deliberate deployment choice, hence config.
type FlowConfig struct {
	TokenDelivery string `env:"TOKEN_DELIVERY" envDefault:"redirect"`
	DashboardURL  string `env:"DASHBOARD_URL"`
	HomeURL       string `env:"HOME_URL"`
}

type SecretsConfig struct {
	Backend        string        `env:"SECRET_STORE" envDefault:"session"`
	TTL            time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieDomain   string        `env:"COOKIE_DOMAIN"`
	CookiePath     string        `env:"COOKIE_PATH" envDefault:"/"`
	CookieSameSite string        `env:"COOKIE_SAMESITE" envDefault:"none"`
	CookieHashKey  string        `env:"COOKIE_HASH_KEY,required"`
	CookieBlockKey string        `env:"COOKIE_BLOCK_KEY"`
}

type StoreConfig struct {
	Backend         string        `env:"STORE" envDefault:"redis"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	ConnectAttempts uint          `env:"STORE_CONNECT_ATTEMPTS" envDefault:"5"`
	ConnectDelay    time.Duration `env:"STORE_CONNECT_DELAY" envDefault:"2s"`
}

type FulfillmentConfig struct {
	BaseURL string `env:"FULFILLMENT_API_BASE_URL,required"`
}

type S3Config struct {
	Region           string `env:"S3_REGION,required"`
	AccessKeyID      string `env:"S3_ACCESS_KEY_ID,required"`
	SecretAccessKey  string `env:"S3_SECRET_ACCESS_KEY,required"`
	Endpoint         string `env:"S3_ENDPOINT"`
	PublicEndpoint   string `env:"S3_PUBLIC_ENDPOINT,required"`
	Bucket           string `env:"S3_BUCKET,required"`
	ACL              string `env:"S3_ACL" envDefault:"public-read"`
	PicturesFolder   string `env:"S3_PICTURES_FOLDER" envDefault:"pictures"`
	SignaturesFolder string `env:"S3_SIGNATURES_FOLDER" envDefault:"signatures"`
}

// Load parses the environment and validates cross-field rules. Unknown
// environment variables are ignored; a missing or malformed required
// value makes startup fail before the service accepts traffic.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.Flow.TokenDelivery {
	case TokenDeliveryRedirect:
		if cfg.Flow.DashboardURL == "" {
			return fmt.Errorf("DASHBOARD_URL is required when TOKEN_DELIVERY=%s", TokenDeliveryRedirect)
		}
	case TokenDeliverySession:
		if cfg.Secrets.Backend != SecretBackendSession {
			return fmt.Errorf("TOKEN_DELIVERY=%s requires SECRET_STORE=%s", TokenDeliverySession, SecretBackendSession)
		}
	default:
		return fmt.Errorf("unknown TOKEN_DELIVERY %q", cfg.Flow.TokenDelivery)
	}

	if cfg.Secrets.Backend != SecretBackendSession && cfg.Secrets.Backend != SecretBackendCookie {
		return fmt.Errorf("unknown SECRET_STORE %q", cfg.Secrets.Backend)
	}

	if cfg.Store.Backend != StoreBackendRedis && cfg.Store.Backend != StoreBackendInmem {
		return fmt.Errorf("unknown STORE %q", cfg.Store.Backend)
	}

	if len(cfg.Secrets.CookieHashKey) < 32 {
		return fmt.Errorf("COOKIE_HASH_KEY must be at least 32 bytes, got %d", len(cfg.Secrets.CookieHashKey))
	}

	switch len(cfg.Secrets.CookieBlockKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("COOKIE_BLOCK_KEY must be empty or 16, 24 or 32 bytes, got %d", len(cfg.Secrets.CookieBlockKey))
	}

	if _, err := cfg.Secrets.SameSite(); err != nil {
		return err
	}

	return nil
}

func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func (sc SecretsConfig) SameSite() (http.SameSite, error) {
	switch sc.CookieSameSite {
	case "none":
		return http.SameSiteNoneMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	default:
		return 0, fmt.Errorf("unknown COOKIE_SAMESITE %q", sc.CookieSameSite)
	}
}
