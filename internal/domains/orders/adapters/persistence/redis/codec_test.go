package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

func TestEncodeDecode_KeepsDishAttributes(t *testing.T) {
	order := &domain.Order{
		ID:           "abc",
		DeliverTo:    "A",
		MobileNumber: "555",
		Status:       domain.StatusPending,
		Dishes:       []domain.Dish{{Quantity: 3, Attributes: map[string]any{"name": "Bagel", "price": json.Number("6")}}},
	}

	body, err := encode(order)
	require.NoError(t, err)

	decoded, err := decode(body)
	require.NoError(t, err)
	assert.Equal(t, order, decoded)
}

func TestDecode_RejectsCorruptDocument(t *testing.T) {
	_, err := decode([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestRepository_RequiresClient(t *testing.T) {
	var repo *Repository
	_, err := repo.List(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "orders:order:x", NewRepository(nil, "").orderKey("x"))
}
