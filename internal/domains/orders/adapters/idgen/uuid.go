package idgen

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.IDGenerator = UUID{}

// UUID hands out random version 4 identifiers rendered as 32 hex characters.
type UUID struct{}

func NewUUID() UUID {
	return UUID{}
}

func (UUID) Next() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
