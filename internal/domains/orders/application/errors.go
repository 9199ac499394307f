package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrNotPending signals a delete against an order that already left the pending state.
	ErrNotPending = errors.New("an order cannot be deleted unless it is pending")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotPending) {
		return ErrNotPending
	}
	if errors.Is(err, domain.ErrMissingID) ||
		errors.Is(err, domain.ErrMissingDeliverTo) ||
		errors.Is(err, domain.ErrMissingMobileNumber) ||
		errors.Is(err, domain.ErrNoDishes) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrStatusNotUpdatable) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// withOrderID attaches the requested id to a repository not-found.
func withOrderID(id string, err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return ports.NotFoundError{ID: id}
	}
	return err
}
