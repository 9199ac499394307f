package ordersserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

func TestChain_StopsAtFirstFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls []string
	pass := func(name string) Check {
		return func(*gin.Context) error {
			calls = append(calls, name)
			return nil
		}
	}
	fail := func(name string) Check {
		return func(*gin.Context) error {
			calls = append(calls, name)
			return apierrors.NewValidationError(name + " failed")
		}
	}
	handler := func(c *gin.Context) {
		calls = append(calls, "handler")
		c.Status(http.StatusOK)
	}

	router := gin.New()
	router.Use(ReportErrors(NewErrorResponder()))
	router.GET("/chain", Chain(handler, pass("first"), fail("second"), pass("third"))...)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chain", nil))

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "second failed")
}

func TestChain_RunsHandlerWhenAllChecksPass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ran := false
	router := gin.New()
	router.GET("/chain", Chain(func(c *gin.Context) {
		ran = true
		c.Status(http.StatusNoContent)
	}, func(*gin.Context) error { return nil })...)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chain", nil))

	assert.True(t, ran)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReportErrors_UnknownErrorIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ReportErrors(NewErrorResponder()))
	router.GET("/boom", Chain(func(*gin.Context) {}, func(*gin.Context) error { return errors.New("store offline") })...)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
}

func TestMapOrderError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{name: "not found with id", err: orderports.NotFoundError{ID: "7"}, status: http.StatusNotFound, detail: "Order id not found: 7"},
		{name: "bare not found", err: orderports.ErrNotFound, status: http.StatusNotFound, detail: "order not found"},
		{name: "not pending", err: orderapp.ErrNotPending, status: http.StatusBadRequest, detail: notPendingMessage},
		{name: "wrapped invalid status", err: fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, domain.ErrInvalidStatus), status: http.StatusBadRequest, detail: invalidStatusMessage},
		{name: "wrapped dish quantity", err: fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, domain.DishQuantityError{Index: 1}), status: http.StatusBadRequest, detail: "dish 1 must have a quantity that is an integer greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem, ok := mapOrderError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.status, problem.Status)
			assert.Equal(t, tt.detail, problem.Detail)
		})
	}

	_, ok := mapOrderError(errors.New("store offline"))
	assert.False(t, ok)
}
