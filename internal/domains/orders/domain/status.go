package domain

// Status enumerates order progression.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// IsValid reports whether the status is one an order can rest in.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsUpdatable reports whether an update request may set the status.
// Delivered and cancelled are terminal and not accepted through updates.
func (s Status) IsUpdatable() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusOutForDelivery:
		return true
	default:
		return false
	}
}
