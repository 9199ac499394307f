package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// SeedOrders loads {"data": [...]} from path into an empty repository and
// returns the number of orders stored. A non-empty repository is left alone.
func SeedOrders(ctx context.Context, path string, repo orderports.Repository, ids orderports.IDGenerator) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var seed orderhttpmapper.Envelope[[]orderhttpmapper.OrderData]
	if err := dec.Decode(&seed); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	for i, data := range seed.Data {
		input, err := orderhttpmapper.ToInput(data)
		if err != nil {
			return i, fmt.Errorf("seed order %d: %w", i, err)
		}
		id, ok := data.Field("id")
		if !ok {
			id = ids.Next()
		}
		order, err := domain.NewOrder(id, input.DeliverTo, input.MobileNumber, input.Status, input.Dishes)
		if err != nil {
			return i, fmt.Errorf("seed order %d: %w", i, err)
		}
		if _, err := repo.Append(ctx, order); err != nil {
			return i, fmt.Errorf("seed order %d: %w", i, err)
		}
	}
	return len(seed.Data), nil
}
