package fulfillment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/routedesk/authrelay/lib/myhttpclient"
)

func TestRESTClient(t *testing.T) {
	c := context.TODO()

	t.Run("Query posts suiteql with bearer and transient preference", func(t *testing.T) {
		var gotMethod, gotPath, gotAuth, gotPrefer string
		var gotBody []byte
		downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotPrefer = r.Header.Get("Prefer")
			gotBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"items":[]}`))
		}))
		defer downstream.Close()

		client := NewRESTClient(Config{BaseURL: downstream.URL}, myhttpclient.NewJSONHTTPClient())

		status, body, err := client.QueryShippedOrders(c, "token-abc")
		assert.NoError(t, err)
		assert.Equal(t, 200, status)
		assert.JSONEq(t, `{"items":[]}`, string(body))

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/query/v1/suiteql", gotPath)
		assert.Equal(t, "Bearer token-abc", gotAuth)
		assert.Equal(t, "transient", gotPrefer)

		payload := map[string]string{}
		assert.NoError(t, json.Unmarshal(gotBody, &payload))
		assert.Contains(t, payload["q"], "ItemShip")
	})

	t.Run("Get record hits the record resource", func(t *testing.T) {
		var gotPath string
		downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"id":"42"}`))
		}))
		defer downstream.Close()

		client := NewRESTClient(Config{BaseURL: downstream.URL}, myhttpclient.NewJSONHTTPClient())

		status, _, err := client.GetRecord(c, "token-abc", "42")
		assert.NoError(t, err)
		assert.Equal(t, 200, status)
		assert.Equal(t, "/record/v1/itemFulfillment/42", gotPath)
	})

	t.Run("Update patches the record with image urls", func(t *testing.T) {
		var gotMethod string
		var gotBody []byte
		downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer downstream.Close()

		client := NewRESTClient(Config{BaseURL: downstream.URL}, myhttpclient.NewJSONHTTPClient())

		status, _, err := client.UpdateRecord(c, "token-abc", "42", RecordUpdate{
			CapturedImageURL:  "https://cdn.example.com/pod/pictures/a.png",
			SignatureImageURL: "https://cdn.example.com/pod/signatures/b.png",
		})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Equal(t, http.MethodPatch, gotMethod)

		payload := map[string]any{}
		assert.NoError(t, json.Unmarshal(gotBody, &payload))
		assert.Equal(t, "https://cdn.example.com/pod/pictures/a.png", payload["custbody_pod_picture"])
		assert.Equal(t, "https://cdn.example.com/pod/signatures/b.png", payload["custbody_pod_signature"])
	})
}
