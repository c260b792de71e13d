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
	ProviderName = "dealership-sync-api"
	ConsumerName = "dealer-portal"

	// EasyCarsProviderName is the remote ECService the sync client consumes.
	EasyCarsProviderName = "easycars-ecservice"
	EasyCarsConsumerName = "dealership-sync"

	StateNoCredentials   = "dealership 12 has no easycars credentials"
	StateSyncLogsExist   = "dealership 12 has sync history"
	StateNoConflicts     = "no lead status conflicts exist"
	StateEasyCarsAccount = "easycars account EC114575 has advertised stock"
)

const (
	DealershipID int64 = 12

	MissingConflictID = "00000000-0000-0000-0000-000000000404"

	AccountNumber = "EC114575"
	AccountSecret = "acct-secret"
	PublicID      = "public-id"
	SecretKey     = "secret-key"
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

// PactFile returns the canonical pact file path for the dealer portal consumer.
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

// ExampleStockItem is the advertised vehicle returned by the EasyCars interaction.
func ExampleStockItem() map[string]any {
	return map[string]any{
		"StockNumber":     "S-100",
		"VIN":             "JTMHV05J604123456",
		"Make":            "Toyota",
		"Model":           "LandCruiser",
		"YearGroup":       2021,
		"Odometer":        42000,
		"AdvertisedPrice": 89990.5,
		"NewUsed":         "Used",
		"ImageURLs":       []string{"https://images.example/s-100/1.jpg"},
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
