//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/dealership-sync/test/pact"

	"github.com/Apurer/dealership-sync/internal/app/api"
	ecworkflows "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/workflows"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestDealershipSyncProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateNoCredentials: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateSyncLogsExist: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedSyncHistory(t)
			}
			return nil, nil
		},
		pacttest.StateNoConflicts: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves a freshly built in-memory stack per provider state.
type contractProviderApp struct {
	mu         sync.RWMutex
	handler    http.Handler
	components *api.Components
	cleanup    func()
	server     *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		handler := app.handler
		app.mu.RUnlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		app.server.Close()
		app.mu.Lock()
		defer app.mu.Unlock()
		if app.cleanup != nil {
			app.cleanup()
		}
	})
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	components, cleanup, err := api.BuildComponents(context.Background(), api.Config{
		TemporalDisabled: true,
		ConflictStrategy: domain.StrategyRemoteWins,
		EncryptionKey:    "0123456789abcdef0123456789abcdef",
		HTTPTimeout:      time.Second,
	}, nil)
	require.NoError(t, err)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cleanup != nil {
		a.cleanup()
	}
	a.components = components
	a.cleanup = cleanup
	a.handler = api.NewRouter(components.Service, ecworkflows.NewInlineSyncWorkflows(components.Service))
}

// seedSyncHistory records one failed stock run for the dealership.
func (a *contractProviderApp) seedSyncHistory(t testing.TB) {
	t.Helper()
	a.mu.RLock()
	service := a.components.Service
	a.mu.RUnlock()
	result := service.SyncStock(context.Background(), pacttest.DealershipID)
	require.Equal(t, domain.SyncStatusFailed, result.Status)
}
