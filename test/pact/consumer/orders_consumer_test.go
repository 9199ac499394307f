//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-orders-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type dishPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type orderPayload struct {
	ID           string        `json:"id,omitempty"`
	DeliverTo    string        `json:"deliverTo"`
	MobileNumber string        `json:"mobileNumber"`
	Status       string        `json:"status"`
	Dishes       []dishPayload `json:"dishes"`
}

type envelope struct {
	Data orderPayload `json:"data"`
}

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.status)
}

func TestOrdersDashboardContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExampleOrderPayload()
	dish := pacttest.ExampleDish()
	dishMatcher := matchers.Map{
		"id":       matchers.Like(dish["id"]),
		"name":     matchers.Like(dish["name"]),
		"price":    matchers.Like(dish["price"]),
		"quantity": matchers.Like(dish["quantity"]),
	}
	orderMatcher := func(id string) matchers.Map {
		return matchers.Map{
			"id":           matchers.Term(id, "^[0-9a-f]{32}$"),
			"deliverTo":    matchers.Like(example["deliverTo"]),
			"mobileNumber": matchers.Like(example["mobileNumber"]),
			"status":       matchers.Term("pending", "pending|preparing|out-for-delivery|delivered|cancelled"),
			"dishes":       matchers.EachLike(dishMatcher, 1),
		}
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("a request to create an order").
		WithRequest("POST", "/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]any{"data": example})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"data": orderMatcher(pacttest.ExistingOrderID)})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderPending).
		UponReceiving("a request to fetch a pending order").
		WithRequest("GET", "/orders/"+pacttest.ExistingOrderID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"data": orderMatcher(pacttest.ExistingOrderID)})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", "/orders/"+pacttest.MissingOrderID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"status": matchers.Like(http.StatusNotFound),
				"error":  matchers.S("Order id not found: " + pacttest.MissingOrderID),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderPending).
		UponReceiving("a request to delete a pending order").
		WithRequest("DELETE", "/orders/"+pacttest.ExistingOrderID).
		WillRespondWith(http.StatusNoContent)

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrdersClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, orderPayload{
			DeliverTo:    example["deliverTo"].(string),
			MobileNumber: example["mobileNumber"].(string),
			Status:       "pending",
			Dishes: []dishPayload{{
				ID:       dish["id"].(string),
				Name:     dish["name"].(string),
				Price:    dish["price"].(int),
				Quantity: dish["quantity"].(int),
			}},
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created.ID == "" {
			return fmt.Errorf("expected created order id to be set")
		}

		fetched, err := client.GetOrder(ctx, pacttest.ExistingOrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if fetched.ID != pacttest.ExistingOrderID {
			return fmt.Errorf("expected order id %s, got %s", pacttest.ExistingOrderID, fetched.ID)
		}

		_, err = client.GetOrder(ctx, pacttest.MissingOrderID)
		if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for order %s, got %v", pacttest.MissingOrderID, err)
		}

		return client.DeleteOrder(ctx, pacttest.ExistingOrderID)
	})
	require.NoError(t, err)
}

type ordersClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrdersClient(config pactconsumer.MockServerConfig) *ordersClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &ordersClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *ordersClient) CreateOrder(ctx context.Context, order orderPayload) (*orderPayload, error) {
	body, err := json.Marshal(envelope{Data: order})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doOrder(req)
}

func (c *ordersClient) GetOrder(ctx context.Context, id string) (*orderPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+id, nil)
	if err != nil {
		return nil, err
	}
	return c.doOrder(req)
}

func (c *ordersClient) DeleteOrder(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/orders/"+id, nil)
	if err != nil {
		return err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		return decodeAPIError(res)
	}
	return nil
}

func (c *ordersClient) doOrder(req *http.Request) (*orderPayload, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}
	var payload envelope
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

func decodeAPIError(res *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(res.Body).Decode(&body)
	return apiError{status: res.StatusCode, message: body.Error}
}
