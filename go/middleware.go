package ordersserver

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

const (
	orderContextKey   = "orders.order"
	payloadContextKey = "orders.payload"
)

// Check inspects the request and returns a non-nil error to stop the chain.
type Check func(c *gin.Context) error

// Guard turns a Check into gin middleware. The first failing check records
// its error and aborts, so no later check or handler runs.
func Guard(check Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := check(c); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Chain composes checks in order ahead of the terminal handler.
func Chain(handler gin.HandlerFunc, checks ...Check) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(checks)+1)
	for _, check := range checks {
		handlers = append(handlers, Guard(check))
	}
	return append(handlers, handler)
}

// BindOrderPayload decodes {"data": {...}} once and keeps it for the rest of
// the chain. An empty body or missing data object yields an empty payload.
func BindOrderPayload(c *gin.Context) error {
	raw, err := c.GetRawData()
	if err != nil {
		return apierrors.ErrBadRequest.WithDetail(malformedBodyMessage)
	}
	data, err := orderhttpmapper.DecodePayload(raw)
	if err != nil {
		return apierrors.ErrBadRequest.WithDetail(malformedBodyMessage)
	}
	c.Set(payloadContextKey, data)
	return nil
}

// BodyDataHas requires the named payload field to be present and non-empty.
func BodyDataHas(field string) Check {
	return func(c *gin.Context) error {
		if _, ok := payloadFrom(c).Field(field); ok {
			return nil
		}
		return apierrors.NewValidationError(fmt.Sprintf("Must include a %s", field))
	}
}

// DishesIsValidArray requires dishes to be an array with at least one element.
func DishesIsValidArray(c *gin.Context) error {
	elements, ok := orderhttpmapper.DishElements(payloadFrom(c).Dishes)
	if !ok || len(elements) == 0 {
		return apierrors.NewValidationError(noDishesMessage)
	}
	return nil
}

// QuantityIsValidNumber stops at the first dish without a positive integer quantity.
func QuantityIsValidNumber(c *gin.Context) error {
	elements, ok := orderhttpmapper.DishElements(payloadFrom(c).Dishes)
	if !ok {
		return apierrors.NewValidationError(noDishesMessage)
	}
	for i, element := range elements {
		if _, ok := orderhttpmapper.DishQuantity(element); !ok {
			return apierrors.NewValidationError(domain.DishQuantityError{Index: i}.Error())
		}
	}
	return nil
}

// OrderExists loads the order named by the orderId route parameter.
func OrderExists(service orderports.Service) Check {
	return func(c *gin.Context) error {
		orderID := c.Param("orderId")
		order, err := service.Get(c.Request.Context(), orderID)
		if errors.Is(err, orderports.ErrNotFound) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return err
		}
		c.Set(orderContextKey, order)
		return nil
	}
}

// OrderIDMatches rejects a body id that differs from the route id. An absent body id matches.
func OrderIDMatches(c *gin.Context) error {
	order := orderFrom(c)
	if bodyID, mismatch := payloadFrom(c).MismatchedID(order.ID); mismatch {
		return apierrors.NewValidationError(fmt.Sprintf("Order id does not match route id. Order: %s, Route: %s", bodyID, order.ID))
	}
	return nil
}

// StatusIsUpdatable accepts only the statuses an update may set.
func StatusIsUpdatable(c *gin.Context) error {
	status, _ := payloadFrom(c).Field("status")
	if !domain.Status(status).IsUpdatable() {
		return apierrors.NewValidationError(invalidStatusMessage)
	}
	return nil
}

// OrderIsPending guards deletes.
func OrderIsPending(c *gin.Context) error {
	if orderFrom(c).Status != domain.StatusPending {
		return apierrors.NewValidationError(notPendingMessage)
	}
	return nil
}

// RequestLogger logs one line per request through slog.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if logger == nil {
			return
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func payloadFrom(c *gin.Context) orderhttpmapper.OrderData {
	if v, ok := c.Get(payloadContextKey); ok {
		if data, ok := v.(orderhttpmapper.OrderData); ok {
			return data
		}
	}
	return orderhttpmapper.OrderData{}
}

func orderFrom(c *gin.Context) *domain.Order {
	if v, ok := c.Get(orderContextKey); ok {
		if order, ok := v.(*domain.Order); ok {
			return order
		}
	}
	return &domain.Order{}
}
