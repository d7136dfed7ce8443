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
	ProviderName = "inventory-api"
	ConsumerName = "inventory-portal"

	// ForecastProviderName is the external demand model the API consumes.
	ForecastProviderName = "forecast-service"

	StateInventoryEmpty = "inventory is empty"
	StateItemExists     = "item Milk exists with stock 10"
	StateItemMissing    = "no item with id missing-item"
	StateForecastKnown  = "a forecast exists for Milk"
	StateReportsKnown   = "a reorder report is available"
)

const (
	ExistingItemID   = "item-101"
	MissingItemID    = "missing-item"
	ExampleProduct   = "Milk"
	ExampleStock     = 10.0
	ExampleThreshold = 5
	ExamplePrice     = 2.5
	ExampleForecast  = 30.0
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

// PactFile returns the pact file path for the inventory portal consumer.
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

// ExampleItemPayload provides stable request data for item interactions.
func ExampleItemPayload() map[string]any {
	return map[string]any{
		"productName":      ExampleProduct,
		"productType":      "Dairy",
		"stockLevel":       ExampleStock,
		"reorderThreshold": ExampleThreshold,
		"price":            ExamplePrice,
		"dateAdded":        "2024-06-12T10:00:00Z",
		"lifeExpectancy":   "2024-06-30T00:00:00Z",
		"supplierName":     "Farm Co",
		"category":         "Grocery",
		"isActive":         true,
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
