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

	pacttest "github.com/Apurer/go-gin-orders-api/test/pact"

	ordersserver "github.com/Apurer/go-gin-orders-api/go"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/idgen"
	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestOrdersProviderPact(t *testing.T) {
	t.Helper()
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
		pacttest.StateOrdersBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateOrderPending: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPendingOrder(t, pacttest.ExistingOrderID)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
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
	repo   *ordersmemory.Repository
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	repo := ordersmemory.NewRepository()
	service := ordersobs.New(ordersapp.NewService(repo, idgen.NewUUID()))

	router := gin.New()
	router.Use(gin.Recovery())
	router = ordersserver.NewRouterWithGinEngine(router, ordersserver.ApiHandleFunctions{
		OrdersAPI: ordersserver.NewOrdersAPI(service, ordersworkflows.NewInlineOrderWorkflows(service)),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{repo: repo, server: server}
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	orders, err := a.repo.List(context.Background())
	require.NoError(t, err)
	for _, order := range orders {
		_ = a.repo.Delete(context.Background(), order.ID)
	}
}

func (a *contractProviderApp) seedPendingOrder(t testing.TB, id string) {
	t.Helper()
	order, err := orderdomain.NewOrder(id, "1600 Pennsylvania Avenue NW, Washington, DC 20500", "(202) 456-1111", orderdomain.StatusPending, []orderdomain.Dish{
		{Quantity: 1, Attributes: map[string]any{"id": "90c3d873684bf381dfab29034b5bba73", "name": "Falafel and tahini bagel", "price": 6}},
	})
	require.NoError(t, err)
	_, err = a.repo.Append(context.Background(), order)
	require.NoError(t, err)
}
