package oauth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/routedesk/authrelay/lib/mycontext"
	"github.com/routedesk/authrelay/lib/myerrors"
	"github.com/routedesk/authrelay/lib/myhttp"
	"github.com/routedesk/authrelay/lib/mylog"
	"github.com/routedesk/authrelay/lib/mystore"
	"github.com/routedesk/authrelay/lib/mytime"
	"github.com/routedesk/authrelay/services/oauth/oauthclient"
	"github.com/routedesk/authrelay/services/oauth/secretstore"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(config Config, secretStore secretstore.SecretStore, tokenStore mystore.Store[TokenData], nower mytime.Nower, oauthClient oauthclient.OauthClient) *webService {
	return &webService{
		service: newService(config, secretStore, tokenStore, nower, oauthClient),
		logger:  mylog.New("oauth"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/auth", s.authPage()).Methods("GET")
	router.HandleFunc("/callback", s.callbackPage()).Methods("GET")
	if s.service.config.TokenDelivery == TokenDeliverySession {
		router.HandleFunc("/gettoken", s.getTokenPage()).Methods("GET")
	}
	router.HandleFunc("/logout", s.logoutPage()).Methods("GET")
}

func (s *webService) authPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		authenticationURL, err := s.service.start(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, authenticationURL, http.StatusFound)
	}
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		providerError := r.URL.Query().Get("error")
		if providerError != "" {
			errorDescription := r.URL.Query().Get("error_description")
			s.logger.Log(c, "", mylog.SeverityWarn, "Provider denied authorization: %s (%s)", providerError, errorDescription)
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("authorization was not granted")))
			return
		}

		state := r.URL.Query().Get("state")
		if state == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing state")))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("missing code")))
			return
		}

		redirectURL, err := s.service.callback(c, w, r, code, state)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		if redirectURL == "" {
			errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Authorization completed"})
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

func (s *webService) getTokenPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		token, err := s.service.getToken(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, token)
	}
}

func (s *webService) logoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		homeURL, err := s.service.logout(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		if homeURL == "" {
			errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Logged out"})
			return
		}

		http.Redirect(w, r, homeURL, http.StatusFound)
	}
}
