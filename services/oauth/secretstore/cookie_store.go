package secretstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

const (
	stateCookieName    = "oauth_state"
	verifierCookieName = "oauth_code_verifier"
)

// CookieStore keeps FlowSecrets client-side in two encrypted cookies.
// Nothing is held server-side, so this backend cannot support session
// token delivery; it trades that for statelessness.
type CookieStore struct {
	codec    *securecookie.SecureCookie
	settings CookieSettings
}

func NewCookieStore(codec *securecookie.SecureCookie, settings CookieSettings) *CookieStore {
	return &CookieStore{
		codec:    codec,
		settings: settings,
	}
}

func (s *CookieStore) Put(c context.Context, w http.ResponseWriter, r *http.Request, secrets FlowSecrets) error {
	err := s.setCookie(w, stateCookieName, secrets.State)
	if err != nil {
		return err
	}

	return s.setCookie(w, verifierCookieName, secrets.Verifier)
}

func (s *CookieStore) Get(c context.Context, r *http.Request) (FlowSecrets, bool, error) {
	state, exists, err := s.getCookie(r, stateCookieName)
	if err != nil || !exists {
		return FlowSecrets{}, false, err
	}

	verifier, exists, err := s.getCookie(r, verifierCookieName)
	if err != nil || !exists {
		return FlowSecrets{}, false, err
	}

	return FlowSecrets{
		State:    state,
		Verifier: verifier,
	}, true, nil
}

func (s *CookieStore) Clear(c context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, s.cookie(stateCookieName, "", -1))
	http.SetCookie(w, s.cookie(verifierCookieName, "", -1))

	return nil
}

func (s *CookieStore) FlowID(r *http.Request) (string, bool) {
	return "", false
}

func (s *CookieStore) setCookie(w http.ResponseWriter, name string, value string) error {
	encoded, err := s.codec.Encode(name, value)
	if err != nil {
		return fmt.Errorf("error encoding cookie %s: %w", name, err)
	}

	http.SetCookie(w, s.cookie(name, encoded, s.settings.MaxAge))

	return nil
}

func (s *CookieStore) getCookie(r *http.Request, name string) (string, bool, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false, nil
	}

	var value string
	err = s.codec.Decode(name, cookie.Value, &value)
	if err != nil {
		// A cookie that does not authenticate is as good as absent.
		return "", false, nil
	}

	return value, true, nil
}

func (s *CookieStore) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   s.settings.Domain,
		Path:     s.settings.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: s.settings.SameSite,
	}
}
