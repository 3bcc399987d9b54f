package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/routedesk/authrelay/lib/myhttpclient"
)

type Config struct {
	// BaseURL of the downstream REST services, e.g.
	// https://<account>.suitetalk.api.example.com/services/rest
	BaseURL string
}

// shippedOrdersQuery selects the open item fulfillments a driver still
// has to deliver.
const shippedOrdersQuery = "SELECT tranid, entity, shipaddress, trandate FROM transaction WHERE type = 'ItemShip' AND status = 'ItemShip:C' ORDER BY trandate DESC"

type RecordUpdate struct {
	CapturedImageURL  string
	SignatureImageURL string
}

// Client forwards bearer-authenticated calls to the downstream API and
// hands back the raw status and JSON body for proxying. It plays no
// part in the authorization flow itself.
//
//go:generate mockgen -source=client.go -package fulfillment -destination client_mock.go Client
type Client interface {
	QueryShippedOrders(c context.Context, token string) (int, []byte, error)
	GetRecord(c context.Context, token string, id string) (int, []byte, error)
	UpdateRecord(c context.Context, token string, id string, update RecordUpdate) (int, []byte, error)
}

type restClient struct {
	config Config
	sender myhttpclient.HTTPSender
}

func NewRESTClient(config Config, sender myhttpclient.HTTPSender) *restClient {
	return &restClient{
		config: config,
		sender: sender,
	}
}

func (rc restClient) QueryShippedOrders(c context.Context, token string) (int, []byte, error) {
	body, err := json.Marshal(map[string]string{"q": shippedOrdersQuery})
	if err != nil {
		return 0, nil, fmt.Errorf("error marshalling query: %s", err)
	}

	return rc.sender.Send(c, http.MethodPost, rc.config.BaseURL+"/query/v1/suiteql", body, map[string]string{
		"Authorization": "Bearer " + token,
		// the query endpoint refuses requests without this
		"Prefer": "transient",
	})
}

func (rc restClient) GetRecord(c context.Context, token string, id string) (int, []byte, error) {
	return rc.sender.Send(c, http.MethodGet, rc.recordURL(id), nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (rc restClient) UpdateRecord(c context.Context, token string, id string, update RecordUpdate) (int, []byte, error) {
	body, err := json.Marshal(map[string]any{
		"custbody_pod_picture":   update.CapturedImageURL,
		"custbody_pod_signature": update.SignatureImageURL,
		"shipStatus": map[string]string{
			"id": "C",
		},
	})
	if err != nil {
		return 0, nil, fmt.Errorf("error marshalling update: %s", err)
	}

	return rc.sender.Send(c, http.MethodPatch, rc.recordURL(id), body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (rc restClient) recordURL(id string) string {
	return rc.config.BaseURL + "/record/v1/itemFulfillment/" + id
}
