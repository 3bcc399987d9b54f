package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/routedesk/authrelay/lib/codeverifier"
	"github.com/routedesk/authrelay/lib/myerrors"
	"github.com/routedesk/authrelay/lib/mylog"
	"github.com/routedesk/authrelay/lib/mystore"
	"github.com/routedesk/authrelay/lib/mytime"
	"github.com/routedesk/authrelay/services/oauth/oauthclient"
	"github.com/routedesk/authrelay/services/oauth/secretstore"
)

type service struct {
	config      Config
	secretStore secretstore.SecretStore
	tokenStore  mystore.Store[TokenData]
	oauthClient oauthclient.OauthClient
	nower       mytime.Nower
	logger      mylog.Logger
}

func newService(config Config, secretStore secretstore.SecretStore, tokenStore mystore.Store[TokenData], nower mytime.Nower, oauthClient oauthclient.OauthClient) *service {
	return &service{
		config:      config,
		secretStore: secretStore,
		tokenStore:  tokenStore,
		oauthClient: oauthClient,
		nower:       nower,
		logger:      mylog.New("oauth"),
	}
}

// start mints the per-flow secrets, persists them and composes the
// provider's authorization URL for the redirect.
func (s *service) start(c context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	state, err := codeverifier.GenerateState()
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error generating state: %s", err))
	}

	verifier, err := codeverifier.NewVerifier()
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error generating verifier: %s", err))
	}

	method, challenge, err := verifier.CreateChallenge()
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error creating challenge: %s", err))
	}

	err = s.secretStore.Put(c, w, r, secretstore.FlowSecrets{
		State:    state,
		Verifier: verifier.GetValue(),
	})
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error storing flow secrets: %s", err))
	}

	authURL, err := s.oauthClient.ComposeAuthURL(c, oauthclient.ComposeAuthURLRequest{
		State:           state,
		CodeChallenge:   challenge,
		ChallengeMethod: method,
	})
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error composing auth url: %s", err))
	}

	s.logger.Log(c, state, mylog.SeverityInfo, "Started authorization flow %s", state)

	return authURL, nil
}

// callback validates the returned state against the stored secrets,
// exchanges the code, clears the single-use secrets and determines how
// the token travels onwards.
func (s *service) callback(c context.Context, w http.ResponseWriter, r *http.Request, code string, state string) (string, error) {
	secrets, exists, err := s.secretStore.Get(c, r)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error fetching flow secrets: %s", err))
	}
	if !exists || secrets.State != state {
		s.logger.Log(c, state, mylog.SeverityWarn, "State mismatch on callback (stored-secrets-present:%t)", exists)
		return "", myerrors.NewInvalidInputError(fmt.Errorf("state does not match: possible cross-site request forgery"))
	}

	tokenResp, err := s.oauthClient.GetAccessToken(c, oauthclient.GetTokenRequest{
		Code:         code,
		CodeVerifier: secrets.Verifier,
	})
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error exchanging code: %s", err))
	}

	// Secrets are single-use: a replay of this callback must fail the
	// state check above.
	err = s.secretStore.Clear(c, w, r)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error clearing flow secrets: %s", err))
	}

	s.logger.Log(c, state, mylog.SeverityInfo, "Completed authorization flow %s (token-type:%s, expires-in:%d)",
		state, tokenResp.TokenType, tokenResp.ExpiresIn)

	if s.config.TokenDelivery == TokenDeliverySession {
		flowID, hasFlowID := s.secretStore.FlowID(r)
		if !hasFlowID {
			return "", myerrors.NewInternalError(fmt.Errorf("no flow identity to store token under"))
		}

		err = s.tokenStore.Put(c, flowID, tokenDataFromResponse(tokenResp, s.nower.Now()))
		if err != nil {
			return "", myerrors.NewInternalError(fmt.Errorf("error storing token: %s", err))
		}

		return "", nil
	}

	return s.config.DashboardURL + "?data=" + url.QueryEscape(tokenResp.AccessToken), nil
}

func (s *service) getToken(c context.Context, r *http.Request) (TokenData, error) {
	flowID, exists := s.secretStore.FlowID(r)
	if !exists {
		return TokenData{}, nil
	}

	token, exists, err := s.tokenStore.Get(c, flowID)
	if err != nil {
		return TokenData{}, myerrors.NewInternalError(fmt.Errorf("error fetching token: %s", err))
	}
	if !exists {
		return TokenData{}, nil
	}

	return token, nil
}

func (s *service) logout(c context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	flowID, exists := s.secretStore.FlowID(r)
	if exists && s.tokenStore != nil {
		err := s.tokenStore.Delete(c, flowID)
		if err != nil {
			return "", myerrors.NewInternalError(fmt.Errorf("error clearing token: %s", err))
		}
	}

	err := s.secretStore.Clear(c, w, r)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error clearing flow secrets: %s", err))
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Logged out")

	return s.config.HomeURL, nil
}

func tokenDataFromResponse(resp oauthclient.GetTokenResponse, now time.Time) TokenData {
	return TokenData{
		TokenType:    resp.TokenType,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Scope:        resp.Scope,
		ExpiresAt:    calculateExpiresAt(now, resp.ExpiresIn),
	}
}

func calculateExpiresAt(now time.Time, expiresIn int) *time.Time {
	if expiresIn == 0 {
		return nil
	}
	t := now.Add(time.Second * time.Duration(expiresIn))
	return &t
}
