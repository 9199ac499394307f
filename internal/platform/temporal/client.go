package temporal

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
)

// Options configures the Temporal client shared by the API and the worker.
type Options struct {
	Address   string
	Namespace string
	Logger    *slog.Logger
	Tracer    trace.Tracer
}

// Dial connects to Temporal with OpenTelemetry tracing and slog-backed SDK logs.
func Dial(opts Options) (client.Client, error) {
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: opts.Tracer})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	options := client.Options{
		HostPort:  orDefault(opts.Address, client.DefaultHostPort),
		Namespace: orDefault(opts.Namespace, client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
