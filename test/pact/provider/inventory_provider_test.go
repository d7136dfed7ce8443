//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	pacttest "github.com/Abka012/Odin-AI/test/pact"

	inventoryserver "github.com/Abka012/Odin-AI/go"
	invmemory "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/memory"
	invobs "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/observability"
	invworkflows "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/workflows"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/application"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

type fixedForecast struct{}

func (fixedForecast) Forecast(context.Context, string) (float64, error) {
	return pacttest.ExampleForecast, nil
}

func (fixedForecast) Insights(context.Context, ports.InsightKind) []map[string]any {
	return []map[string]any{}
}

func TestInventoryProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateInventoryEmpty: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateItemExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedItem(t)
			}
			return nil, nil
		},
		pacttest.StateItemMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	repo   *invmemory.Repository
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	repo := invmemory.NewRepository().WithIDGenerator(func() string { return pacttest.ExistingItemID })
	service := invobs.New(application.NewService(repo, fixedForecast{}))
	workflows := invworkflows.NewInlineInventoryWorkflows(service)

	router := gin.New()
	router.Use(gin.Recovery())
	router = inventoryserver.NewRouterWithGinEngine(router, inventoryserver.ApiHandleFunctions{
		InventoryAPI: inventoryserver.NewInventoryAPI(service, workflows),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{repo: repo, server: server}
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	items, err := a.repo.List(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		_ = a.repo.Delete(context.Background(), item.ID)
	}
}

func (a *contractProviderApp) seedItem(t testing.TB) {
	t.Helper()
	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	_, err := a.repo.Save(context.Background(), &domain.Item{
		ProductName:      pacttest.ExampleProduct,
		ProductType:      "Dairy",
		StockLevel:       pacttest.ExampleStock,
		ReorderThreshold: pacttest.ExampleThreshold,
		Price:            pacttest.ExamplePrice,
		DateAdded:        time.Now().UTC(),
		LifeExpectancy:   &expiry,
		SupplierName:     "Farm Co",
		Category:         "Grocery",
		IsActive:         true,
	})
	require.NoError(t, err)
}
