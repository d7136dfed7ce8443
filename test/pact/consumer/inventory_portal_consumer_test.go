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

	pacttest "github.com/Abka012/Odin-AI/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type itemPayload struct {
	ID               string  `json:"id"`
	ProductName      string  `json:"productName"`
	StockLevel       float64 `json:"stockLevel"`
	ReorderThreshold int     `json:"reorderThreshold"`
	Price            float64 `json:"price"`
	Version          int64   `json:"version"`
}

type addItemPayload struct {
	Item    itemPayload `json:"item"`
	Message string      `json:"message"`
	Created bool        `json:"created"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status      int
	problemType string
	title       string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s %s (status %d)", e.problemType, e.title, e.status)
}

func TestInventoryPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	itemMatcher := matchers.Map{
		"id":               matchers.Like(pacttest.ExistingItemID),
		"productName":      matchers.Like(pacttest.ExampleProduct),
		"stockLevel":       matchers.Like(pacttest.ExampleStock),
		"reorderThreshold": matchers.Like(pacttest.ExampleThreshold),
		"price":            matchers.Like(pacttest.ExamplePrice),
		"version":          matchers.Like(1),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")

	pact.AddInteraction().
		Given(pacttest.StateInventoryEmpty).
		UponReceiving("a request to add a new item").
		WithRequest("POST", "/api/inventory/items", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleItemPayload())
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"item":    itemMatcher,
				"message": matchers.Like("Item added successfully."),
				"created": matchers.Like(true),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateItemExists).
		UponReceiving("a request to fetch an existing item").
		WithRequest("GET", "/api/inventory/items/"+pacttest.ExistingItemID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(itemMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateItemMissing).
		UponReceiving("a request for a missing item").
		WithRequest("GET", "/api/inventory/items/"+pacttest.MissingItemID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateItemExists).
		UponReceiving("a request to reduce more stock than is available").
		WithRequest("PATCH", "/api/inventory/items/"+pacttest.ExistingItemID+"/reduce", func(b *pactconsumer.V2RequestBuilder) {
			b.Query("quantity", matchers.S("50"))
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":      matchers.S("/problems/insufficient-stock"),
				"title":     matchers.S("Insufficient Stock"),
				"status":    matchers.Like(http.StatusConflict),
				"requested": matchers.Like(50.0),
				"available": matchers.Like(pacttest.ExampleStock),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPortalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		added, err := client.AddItem(ctx, pacttest.ExampleItemPayload())
		if err != nil {
			return fmt.Errorf("add item: %w", err)
		}
		if !added.Created || added.Item.ID == "" {
			return fmt.Errorf("expected a created item with an id, got %+v", added)
		}

		var fetched itemPayload
		if err := client.do(ctx, http.MethodGet, "/api/inventory/items/"+pacttest.ExistingItemID, nil, &fetched); err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		if fetched.ProductName != pacttest.ExampleProduct {
			return fmt.Errorf("expected %s, got %+v", pacttest.ExampleProduct, fetched)
		}

		err = client.do(ctx, http.MethodGet, "/api/inventory/items/"+pacttest.MissingItemID, nil, nil)
		if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for missing item, got %v", err)
		}

		err = client.do(ctx, http.MethodPatch, "/api/inventory/items/"+pacttest.ExistingItemID+"/reduce?quantity=50", nil, nil)
		if apiErr, ok := err.(apiError); !ok || apiErr.problemType != "/problems/insufficient-stock" {
			return fmt.Errorf("expected insufficient stock problem, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type portalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPortalClient(config pactconsumer.MockServerConfig) *portalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &portalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *portalClient) AddItem(ctx context.Context, item map[string]any) (*addItemPayload, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var out addItemPayload
	if err := c.do(ctx, http.MethodPost, "/api/inventory/items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *portalClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		return apiError{status: res.StatusCode, problemType: problem.Type, title: problem.Title}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
