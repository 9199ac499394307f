package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/idgen"
	ordermemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

func TestService_RecordsSpansMetricsAndLogs(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	svc := New(
		orderapp.NewService(ordermemory.NewRepository(), idgen.NewUUID()),
		WithLogger(logger),
		WithTracer(tracerProvider.Tracer("test")),
		WithMeter(meterProvider.Meter("test")),
	)

	created, err := svc.Create(context.Background(), orderports.OrderInput{
		DeliverTo:    "A",
		MobileNumber: "555",
		Dishes:       []orderdomain.Dish{{Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.True(t, errors.Is(err, orderports.ErrNotFound))

	ended := spans.Ended()
	require.Len(t, ended, 3)
	assert.Equal(t, "OrdersService.Create", ended[0].Name())
	assert.Equal(t, "OrdersService.Get", ended[2].Name())
	assert.Len(t, ended[2].Events(), 1, "the failed lookup records its error")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["orders.service.created"])
	assert.True(t, names["orders.service.deleted"])

	assert.Contains(t, logs.String(), "order created")
	assert.Contains(t, logs.String(), "failed to load order")
}
