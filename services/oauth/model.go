package oauth

import "time"

// TokenData is the opaque bearer credential obtained at the callback.
// It is either handed to the client once via the dashboard redirect or
// kept server-side for /gettoken, never both.
type TokenData struct {
	TokenType    string     `json:"token_type,omitempty"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	Scope        string     `json:"scope,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Config captures the deployment's flow choices.
type Config struct {
	// TokenDelivery is "redirect" or "session".
	TokenDelivery string
	DashboardURL  string
	HomeURL       string
}

const (
	TokenDeliveryRedirect = "redirect"
	TokenDeliverySession  = "session"
)
