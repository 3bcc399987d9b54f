package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/routedesk/authrelay/lib/mycontext"
	"github.com/routedesk/authrelay/lib/myerrors"
	"github.com/routedesk/authrelay/lib/myhttp"
	"github.com/routedesk/authrelay/lib/mylog"
)

type webService struct {
	client Client
	logger mylog.Logger
}

func NewService(client Client) *webService {
	return &webService{
		client: client,
		logger: mylog.New("fulfillment"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/getItemFulfillmentDataSuiteQL", s.queryPage()).Methods("GET")
	router.HandleFunc("/api/getItemFulfillmentRecord", s.recordPage()).Methods("GET")
	router.HandleFunc("/api/updateItemFulfillmentRecord", s.updatePage()).Methods("POST")
}

func (s *webService) queryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		token, err := s.bearerToken(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		status, body, err := s.client.QueryShippedOrders(c, token)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(fmt.Errorf("error querying downstream api: %s", err)))
			return
		}

		s.proxy(c, w, status, body)
	}
}

func (s *webService) recordPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		token, err := s.bearerToken(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing id")))
			return
		}

		status, body, err := s.client.GetRecord(c, token, id)
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(fmt.Errorf("error fetching record %s: %s", id, err)))
			return
		}

		s.proxy(c, w, status, body)
	}
}

type updateRequest struct {
	Data           string `json:"data"`
	ID             string `json:"id"`
	CapturedImage  string `json:"capturedImage"`
	SignatureImage string `json:"signatureImage"`
}

func (s *webService) updatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := updateRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("invalid request body")))
			return
		}

		if req.Data == "" || req.ID == "" || req.CapturedImage == "" || req.SignatureImage == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing required fields: data, id, capturedImage and signatureImage")))
			return
		}

		s.logClaims(c, req.Data)

		status, body, err := s.client.UpdateRecord(c, req.Data, req.ID, RecordUpdate{
			CapturedImageURL:  req.CapturedImage,
			SignatureImageURL: req.SignatureImage,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(fmt.Errorf("error updating record %s: %s", req.ID, err)))
			return
		}

		s.proxy(c, w, status, body)
	}
}

// bearerToken pulls the forwarded access token from the request.
func (s *webService) bearerToken(c context.Context, r *http.Request) (string, error) {
	token := r.URL.Query().Get("data")
	if token == "" {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("missing data"))
	}

	s.logClaims(c, token)

	return token, nil
}

func (s *webService) logClaims(c context.Context, token string) {
	claims, err := DecodeUnverifiedClaims(token)
	if err != nil {
		// Opaque (non-JWT) tokens are fine; there is just nothing to log.
		return
	}

	s.logger.Log(c, claims.Subject, mylog.SeverityDebug, "Relaying request for subject %s (unverified claim)", claims.Subject)
}

// proxy passes the downstream response through unmodified.
func (s *webService) proxy(c context.Context, w http.ResponseWriter, status int, body []byte) {
	s.logger.Log(c, "", mylog.SeverityInfo, "Proxied downstream response: http-status:%d", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
