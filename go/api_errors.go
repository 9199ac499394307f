package ordersserver

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

const (
	noDishesMessage      = "Order must include at least one dish"
	invalidStatusMessage = "Order must have valid status"
	notPendingMessage    = "An order cannot be deleted unless it is pending"
	malformedBodyMessage = "Request body must be valid JSON"
)

// NewErrorResponder maps order service errors onto problem documents.
func NewErrorResponder() *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder("", mapOrderError)
}

// ReportErrors renders the last error recorded by a check or handler, unless
// a response has already been written.
func ReportErrors(responder apierrors.ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		responder.RespondError(c, c.Errors.Last().Err)
	}
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var missing orderports.NotFoundError
	switch {
	case errors.As(err, &missing):
		return orderNotFound(missing.ID), true
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.NewNotFoundError(err.Error()), true
	case errors.Is(err, orderapp.ErrNotPending):
		return apierrors.NewValidationError(notPendingMessage), true
	case errors.Is(err, orderapp.ErrInvalidInput), isDomainInputError(err):
		return apierrors.NewValidationError(validationMessage(err)), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func orderNotFound(orderID string) apierrors.ProblemDetail {
	return apierrors.NewNotFoundError(fmt.Sprintf("Order id not found: %s", orderID))
}

func isDomainInputError(err error) bool {
	return errors.Is(err, domain.ErrMissingDeliverTo) ||
		errors.Is(err, domain.ErrMissingMobileNumber) ||
		errors.Is(err, domain.ErrNoDishes) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrStatusNotUpdatable)
}

// validationMessage words domain failures the way the request checks do.
func validationMessage(err error) string {
	var qtyErr domain.DishQuantityError
	switch {
	case errors.As(err, &qtyErr):
		return qtyErr.Error()
	case errors.Is(err, domain.ErrMissingDeliverTo):
		return "Must include a deliverTo"
	case errors.Is(err, domain.ErrMissingMobileNumber):
		return "Must include a mobileNumber"
	case errors.Is(err, domain.ErrNoDishes):
		return noDishesMessage
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrStatusNotUpdatable):
		return invalidStatusMessage
	default:
		return err.Error()
	}
}
