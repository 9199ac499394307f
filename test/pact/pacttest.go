//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "orders-dashboard"

	StateOrdersBaseline = "orders baseline"
	StateOrderPending   = "a pending order exists"
	StateOrderMissing   = "no order with the missing id"
)

const (
	ExistingOrderID = "f6069a542257054114138301947672ba"
	MissingOrderID  = "00000000000000000000000000000000"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the dashboard consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleDish is the single dish used across interactions.
func ExampleDish() map[string]any {
	return map[string]any{
		"id":       "90c3d873684bf381dfab29034b5bba73",
		"name":     "Falafel and tahini bagel",
		"price":    6,
		"quantity": 1,
	}
}

// ExampleOrderPayload provides stable order data for interactions.
func ExampleOrderPayload() map[string]any {
	return map[string]any{
		"deliverTo":    "1600 Pennsylvania Avenue NW, Washington, DC 20500",
		"mobileNumber": "(202) 456-1111",
		"status":       "pending",
		"dishes":       []map[string]any{ExampleDish()},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
