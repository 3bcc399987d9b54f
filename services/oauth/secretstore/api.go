package secretstore

import (
	"context"
	"net/http"

	"github.com/gorilla/securecookie"
)

// FlowSecrets are the transient values minted at authorization
// initiation and consumed exactly once at the callback.
type FlowSecrets struct {
	State    string `json:"state"`
	Verifier string `json:"code_verifier"`
}

// SecretStore keeps FlowSecrets between the two legs of the flow. The
// flow's identity travels with the HTTP exchange (a session cookie or
// the secret-bearing cookies themselves), so writes and clears get the
// response writer as well.
//
//go:generate mockgen -source=api.go -package secretstore -destination store_mock.go SecretStore
type SecretStore interface {
	Put(c context.Context, w http.ResponseWriter, r *http.Request, secrets FlowSecrets) error
	Get(c context.Context, r *http.Request) (FlowSecrets, bool, error)

	// Clear is idempotent: clearing an absent flow is a no-op.
	Clear(c context.Context, w http.ResponseWriter, r *http.Request) error

	// FlowID identifies the flow server-side. Backends that hold no
	// server-side state report false.
	FlowID(r *http.Request) (string, bool)
}

type CookieSettings struct {
	Domain   string
	Path     string
	SameSite http.SameSite
	MaxAge   int
}

// NewCodec builds the signing (and, when a block key is configured,
// encrypting) codec shared by both backends.
func NewCodec(hashKey string, blockKey string) *securecookie.SecureCookie {
	var block []byte
	if blockKey != "" {
		block = []byte(blockKey)
	}

	return securecookie.New([]byte(hashKey), block)
}
