package domain

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

var (
	ErrMissingID           = errors.New("order id is required")
	ErrMissingDeliverTo    = errors.New("order must include a deliverTo")
	ErrMissingMobileNumber = errors.New("order must include a mobileNumber")
	ErrNoDishes            = errors.New("order must include at least one dish")
	ErrInvalidQuantity     = errors.New("dish quantity must be an integer greater than zero")
	ErrInvalidStatus       = errors.New("order status is invalid")
	ErrStatusNotUpdatable  = errors.New("order status cannot be set by an update")
	ErrNotPending          = errors.New("order is not pending")
)

// DishQuantityError reports the first dish whose quantity is not a positive integer.
type DishQuantityError struct {
	Index int
}

func (e DishQuantityError) Error() string {
	return fmt.Sprintf("dish %d must have a quantity that is an integer greater than 0", e.Index)
}

// Is lets callers match any quantity failure with ErrInvalidQuantity.
func (e DishQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}

// Dish is a line item embedded in an order. Only Quantity is interpreted;
// Attributes carries the remaining fields (name, price, ...) untouched.
type Dish struct {
	Quantity   int
	Attributes map[string]any
}

// Order models the delivery order aggregate.
type Order struct {
	ID           string
	DeliverTo    string
	MobileNumber string
	Status       Status
	Dishes       []Dish
}

// NewOrder validates and constructs a new Order aggregate. An empty status defaults to pending.
func NewOrder(id, deliverTo, mobileNumber string, status Status, dishes []Dish) (*Order, error) {
	if status == "" {
		status = StatusPending
	}
	order := &Order{
		ID:           strings.TrimSpace(id),
		DeliverTo:    deliverTo,
		MobileNumber: mobileNumber,
		Status:       status,
		Dishes:       cloneDishes(dishes),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.ID == "" {
		return ErrMissingID
	}
	if o.DeliverTo == "" {
		return ErrMissingDeliverTo
	}
	if o.MobileNumber == "" {
		return ErrMissingMobileNumber
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	return ValidateDishes(o.Dishes)
}

// Revise overwrites every field except the id. The new status must be one
// an update is allowed to set.
func (o *Order) Revise(deliverTo, mobileNumber string, status Status, dishes []Dish) error {
	if !status.IsUpdatable() {
		return ErrStatusNotUpdatable
	}
	revised := Order{
		ID:           o.ID,
		DeliverTo:    deliverTo,
		MobileNumber: mobileNumber,
		Status:       status,
		Dishes:       cloneDishes(dishes),
	}
	if err := revised.Validate(); err != nil {
		return err
	}
	*o = revised
	return nil
}

// EnsureDeletable reports whether the order may be removed.
func (o *Order) EnsureDeletable() error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Dishes = cloneDishes(o.Dishes)
	return &clone
}

// ValidateDishes requires at least one dish and stops at the first bad quantity.
func ValidateDishes(dishes []Dish) error {
	if len(dishes) == 0 {
		return ErrNoDishes
	}
	for i, dish := range dishes {
		if dish.Quantity <= 0 {
			return DishQuantityError{Index: i}
		}
	}
	return nil
}

func cloneDishes(dishes []Dish) []Dish {
	if dishes == nil {
		return nil
	}
	out := make([]Dish, len(dishes))
	for i, dish := range dishes {
		out[i] = Dish{Quantity: dish.Quantity, Attributes: maps.Clone(dish.Attributes)}
	}
	return out
}
