package secretstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/routedesk/authrelay/lib/mystore"
	"github.com/routedesk/authrelay/lib/myuuid"
)

const sessionCookieName = "relay_session"

// SessionStore keeps FlowSecrets server-side, keyed by a generated flow
// UID. Only the UID reaches the browser, in a signed cookie, so the
// client can neither read nor tamper with the secrets.
type SessionStore struct {
	store    mystore.Store[FlowSecrets]
	codec    *securecookie.SecureCookie
	uuider   myuuid.UUIDer
	settings CookieSettings
}

func NewSessionStore(store mystore.Store[FlowSecrets], codec *securecookie.SecureCookie, uuider myuuid.UUIDer, settings CookieSettings) *SessionStore {
	return &SessionStore{
		store:    store,
		codec:    codec,
		uuider:   uuider,
		settings: settings,
	}
}

func (s *SessionStore) Put(c context.Context, w http.ResponseWriter, r *http.Request, secrets FlowSecrets) error {
	flowID, exists := s.FlowID(r)
	if !exists {
		flowID = s.uuider.Create()
	}

	err := s.store.Put(c, flowID, secrets)
	if err != nil {
		return fmt.Errorf("error storing flow secrets: %w", err)
	}

	encoded, err := s.codec.Encode(sessionCookieName, flowID)
	if err != nil {
		return fmt.Errorf("error encoding session cookie: %w", err)
	}

	http.SetCookie(w, s.cookie(encoded, s.settings.MaxAge))

	return nil
}

func (s *SessionStore) Get(c context.Context, r *http.Request) (FlowSecrets, bool, error) {
	flowID, exists := s.FlowID(r)
	if !exists {
		return FlowSecrets{}, false, nil
	}

	return s.store.Get(c, flowID)
}

func (s *SessionStore) Clear(c context.Context, w http.ResponseWriter, r *http.Request) error {
	flowID, exists := s.FlowID(r)
	if !exists {
		return nil
	}

	err := s.store.Delete(c, flowID)
	if err != nil {
		return fmt.Errorf("error clearing flow secrets: %w", err)
	}

	return nil
}

func (s *SessionStore) FlowID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}

	var flowID string
	err = s.codec.Decode(sessionCookieName, cookie.Value, &flowID)
	if err != nil {
		// An unverifiable cookie is treated as absent.
		return "", false
	}

	return flowID, true
}

func (s *SessionStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Domain:   s.settings.Domain,
		Path:     s.settings.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: s.settings.SameSite,
	}
}
