package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/workflows"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

func testConfig() Config {
	return Config{
		Port:             "0",
		TemporalDisabled: true,
		ConflictStrategy: domain.StrategyRemoteWins,
		EncryptionKey:    "0123456789abcdef0123456789abcdef",
		HTTPTimeout:      time.Second,
	}
}

func TestBuildComponentsFallsBackToMemory(t *testing.T) {
	components, cleanup, err := BuildComponents(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	result := components.Service.SyncStock(context.Background(), 42)
	require.Equal(t, domain.SyncStatusFailed, result.Status)
	require.NotEmpty(t, result.Errors)

	logs, err := components.Service.ListSyncLogs(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestBuildComponentsRejectsBadKey(t *testing.T) {
	cfg := testConfig()
	cfg.EncryptionKey = "short"
	_, _, err := BuildComponents(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestBuildComponentsSeedsCredentialsThroughEncryptor(t *testing.T) {
	components, cleanup, err := BuildComponents(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	clientID, iv, err := components.Encryptor.Encrypt("public-id", "")
	require.NoError(t, err)
	saved, err := components.Credentials.Save(context.Background(), domain.Credential{
		DealershipID: 7,
		ClientIDEnc:  clientID,
		IV:           iv,
		Environment:  "production",
		Active:       true,
	})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.Equal(t, domain.EnvironmentProduction, saved.Environment)
}

func TestRouterServesHealthAndEasyCarsRoutes(t *testing.T) {
	components, cleanup, err := BuildComponents(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	router := NewRouter(components.Service, workflows.NewInlineSyncWorkflows(components.Service))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dealerships/3/easycars/sync-logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
