package ordersserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// OrdersAPI wires HTTP transport with the orders service and workflows.
type OrdersAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service. workflows may be nil.
func NewOrdersAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) OrdersAPI {
	return OrdersAPI{service: service, workflows: workflows}
}

// Get /orders
// List every order
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.Envelope[[]orderhttpmapper.Order]{Data: orderhttpmapper.FromDomainOrders(orders)})
}

// Post /orders
// Create a new order
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	input, err := orderhttpmapper.ToInput(payloadFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	created, err := api.placeOrder(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.Envelope[orderhttpmapper.Order]{Data: orderhttpmapper.FromDomainOrder(created)})
}

func (api *OrdersAPI) placeOrder(ctx context.Context, input orderports.OrderInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.Create(ctx, input)
}

// Get /orders/:orderId
// Find order by id
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	c.JSON(http.StatusOK, orderhttpmapper.Envelope[orderhttpmapper.Order]{Data: orderhttpmapper.FromDomainOrder(orderFrom(c))})
}

// Put /orders/:orderId
// Replace every field of an existing order except its id
func (api *OrdersAPI) UpdateOrder(c *gin.Context) {
	input, err := orderhttpmapper.ToInput(payloadFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), orderFrom(c).ID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.Envelope[orderhttpmapper.Order]{Data: orderhttpmapper.FromDomainOrder(updated)})
}

// Delete /orders/:orderId
// Delete a pending order
func (api *OrdersAPI) DeleteOrder(c *gin.Context) {
	err := api.service.Delete(c.Request.Context(), orderFrom(c).ID)
	if err != nil && !errors.Is(err, orderports.ErrNotFound) {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /healthz
func (api *OrdersAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
