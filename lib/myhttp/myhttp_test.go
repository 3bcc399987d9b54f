package myhttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/routedesk/authrelay/lib/myerrors"
	"github.com/routedesk/authrelay/lib/mylog"
)

func TestWriteErrorClientError(t *testing.T) {
	recorder := httptest.NewRecorder()

	NewWriter(mylog.New("test")).WriteError(context.TODO(), recorder, 1, myerrors.NewInvalidInputError(fmt.Errorf("state is missing")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "state is missing")
}

func TestWriteErrorHidesServerErrorDetail(t *testing.T) {
	recorder := httptest.NewRecorder()

	NewWriter(mylog.New("test")).WriteError(context.TODO(), recorder, 1, myerrors.NewInternalError(fmt.Errorf("token endpoint returned garbage")))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Internal server error")
	assert.NotContains(t, recorder.Body.String(), "token endpoint")
}

func TestWriteSuccess(t *testing.T) {
	recorder := httptest.NewRecorder()

	NewWriter(mylog.New("test")).Write(context.TODO(), recorder, http.StatusOK, SuccessResponse{Message: "done"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "done")
}

func TestNotFoundHandler(t *testing.T) {
	recorder := httptest.NewRecorder()

	NotFoundHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/nonexisting", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRateLimiter(t *testing.T) {
	handler := NewRateLimiter(2, time.Minute).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(remoteAddr string) int {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth", nil)
		req.RemoteAddr = remoteAddr
		handler.ServeHTTP(recorder, req)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, doRequest("1.2.3.4:1111"))
	assert.Equal(t, http.StatusOK, doRequest("1.2.3.4:2222"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest("1.2.3.4:3333"))

	// other clients are unaffected
	assert.Equal(t, http.StatusOK, doRequest("5.6.7.8:1111"))
}
