package ordersserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFuncs are the checks followed by the terminal handler.
	HandlerFuncs []gin.HandlerFunc
}

// ApiHandleFunctions groups the API implementations mounted on the router.
type ApiHandleFunctions struct {
	// Routes for the orders part of the API
	OrdersAPI OrdersAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the order routes to an existing gin engine.
// Middleware the caller wants on every route must be registered before this call.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	responder := NewErrorResponder()
	router.HandleMethodNotAllowed = true
	router.Use(ReportErrors(responder))
	for _, route := range getRoutes(handleFunctions) {
		if len(route.HandlerFuncs) == 0 {
			continue
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFuncs...)
	}
	router.NoMethod(func(c *gin.Context) {
		responder.MethodNotAllowed(c)
	})
	router.NoRoute(func(c *gin.Context) {
		responder.Respond(c, apierrors.ErrNotFound.WithDetail("Path not found: "+c.Request.URL.Path))
	})
	return router
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	api := &handleFunctions.OrdersAPI
	orderExists := OrderExists(api.service)
	return []Route{
		{
			"ListOrders",
			http.MethodGet,
			"/orders",
			Chain(api.ListOrders),
		},
		{
			"CreateOrder",
			http.MethodPost,
			"/orders",
			Chain(api.CreateOrder,
				BindOrderPayload,
				BodyDataHas("deliverTo"),
				BodyDataHas("mobileNumber"),
				DishesIsValidArray,
				QuantityIsValidNumber,
			),
		},
		{
			"GetOrder",
			http.MethodGet,
			"/orders/:orderId",
			Chain(api.GetOrder, orderExists),
		},
		{
			"UpdateOrder",
			http.MethodPut,
			"/orders/:orderId",
			Chain(api.UpdateOrder,
				orderExists,
				BindOrderPayload,
				OrderIDMatches,
				BodyDataHas("status"),
				StatusIsUpdatable,
				BodyDataHas("deliverTo"),
				BodyDataHas("mobileNumber"),
				DishesIsValidArray,
				QuantityIsValidNumber,
			),
		},
		{
			"DeleteOrder",
			http.MethodDelete,
			"/orders/:orderId",
			Chain(api.DeleteOrder, orderExists, OrderIsPending),
		},
		{
			"Health",
			http.MethodGet,
			"/healthz",
			Chain(api.Health),
		},
	}
}
