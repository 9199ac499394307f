package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_RequiresAddress(t *testing.T) {
	_, err := Connect(context.Background(), Options{Addr: "  "})
	assert.EqualError(t, err, "redis address is empty")
}
