package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/application"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	apierrors "github.com/Apurer/dealership-sync/internal/shared/errors"
)

type stubService struct {
	lastLimit  int
	lastImport string
	resolveErr error
	pushed     []int64
}

func (s *stubService) SyncStock(_ context.Context, id int64) *domain.SyncResult {
	r := domain.NewSyncResult(id, domain.SyncTypeStock)
	r.RecordSuccess()
	r.VehiclesCreated = 1
	r.Finalize(1500 * time.Millisecond)
	return r
}

func (s *stubService) SyncLeadStatuses(_ context.Context, id int64) *domain.SyncResult {
	return domain.NewSyncResult(id, domain.SyncTypeLeadStatus)
}

func (s *stubService) PushLead(_ context.Context, id int64) *domain.SyncResult {
	s.pushed = append(s.pushed, id)
	r := domain.NewSyncResult(7, domain.SyncTypeLead)
	r.RecordSuccess()
	r.LeadNumber = "LN-1"
	return r
}

func (s *stubService) ImportLead(_ context.Context, id int64, number string) (*leads.Lead, *domain.SyncResult) {
	s.lastImport = number
	return &leads.Lead{ID: 3, Name: "Jane", Status: leads.StatusReceived, ExternalLeadNumber: &number}, domain.NewSyncResult(id, domain.SyncTypeLead)
}

func (s *stubService) ResolveConflict(_ context.Context, id string, resolution leads.Resolution) (*leads.StatusConflict, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return &leads.StatusConflict{ID: id, LeadID: 3, Resolved: true, Resolution: resolution}, nil
}

func (s *stubService) ListSyncLogs(_ context.Context, id int64, limit int) ([]domain.SyncLog, error) {
	s.lastLimit = limit
	return []domain.SyncLog{{ID: "log-1", DealershipID: id, SyncType: domain.SyncTypeStock, Status: domain.SyncStatusSuccess}}, nil
}

func (s *stubService) ListOpenConflicts(context.Context, int64) ([]*leads.StatusConflict, error) {
	return []*leads.StatusConflict{{ID: "c-1", LeadID: 3, LocalStatus: leads.StatusWon, RemoteStatus: leads.StatusLost}}, nil
}

type stubWorkflows struct {
	pushed int64
}

func (w *stubWorkflows) SyncDealership(_ context.Context, id int64) (*ports.DealershipSyncResult, error) {
	return &ports.DealershipSyncResult{
		Stock:      domain.NewSyncResult(id, domain.SyncTypeStock),
		LeadStatus: domain.NewSyncResult(id, domain.SyncTypeLeadStatus),
		WorkflowID: "wf-1",
	}, nil
}

func (w *stubWorkflows) PushLead(_ context.Context, id int64) (*domain.SyncResult, error) {
	w.pushed = id
	return domain.NewSyncResult(7, domain.SyncTypeLead), nil
}

func newRouter(svc ports.Service, wf ports.WorkflowOrchestrator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, wf).Register(router)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStockSyncReturnsResult(t *testing.T) {
	rec := serve(newRouter(&stubService{}, nil), nethttp.MethodPost, "/v1/dealerships/7/easycars/stock-sync", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var body SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Stock", body.SyncType)
	require.Equal(t, "Success", body.Status)
	require.Equal(t, 1, body.VehiclesCreated)
	require.EqualValues(t, 1500, body.DurationMS)
	require.NotNil(t, body.Errors)
}

func TestInvalidDealershipIDIsValidationProblem(t *testing.T) {
	router := newRouter(&stubService{}, nil)
	for _, path := range []string{"/v1/dealerships/abc/easycars/stock-sync", "/v1/dealerships/0/easycars/stock-sync"} {
		rec := serve(router, nethttp.MethodPost, path, "")
		require.Equal(t, nethttp.StatusBadRequest, rec.Code, path)
		require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	}
}

func TestPushLeadUsesWorkflowsWhenConfigured(t *testing.T) {
	svc := &stubService{}
	wf := &stubWorkflows{}
	rec := serve(newRouter(svc, wf), nethttp.MethodPost, "/v1/leads/42/easycars/push", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.EqualValues(t, 42, wf.pushed)
	require.Empty(t, svc.pushed)
}

func TestPushLeadRunsInlineWithoutWorkflows(t *testing.T) {
	svc := &stubService{}
	rec := serve(newRouter(svc, nil), nethttp.MethodPost, "/v1/leads/42/easycars/push", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, []int64{42}, svc.pushed)
	require.Contains(t, rec.Body.String(), `"leadNumber":"LN-1"`)
}

func TestFullSyncReportsWorkflowID(t *testing.T) {
	rec := serve(newRouter(&stubService{}, &stubWorkflows{}), nethttp.MethodPost, "/v1/dealerships/7/easycars/sync", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var body DealershipSync
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "wf-1", body.WorkflowID)
	require.Equal(t, "LeadStatus", body.LeadStatus.SyncType)
}

func TestImportLeadPassesLeadNumber(t *testing.T) {
	svc := &stubService{}
	rec := serve(newRouter(svc, nil), nethttp.MethodPost, "/v1/dealerships/7/easycars/leads/LN-77/import", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, "LN-77", svc.lastImport)
	require.Contains(t, rec.Body.String(), `"externalLeadNumber":"LN-77"`)
}

func TestListSyncLogsBindsLimit(t *testing.T) {
	svc := &stubService{}
	router := newRouter(svc, nil)

	rec := serve(router, nethttp.MethodGet, "/v1/dealerships/7/easycars/sync-logs?limit=5", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, 5, svc.lastLimit)

	rec = serve(router, nethttp.MethodGet, "/v1/dealerships/7/easycars/sync-logs?limit=many", "")
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestListConflicts(t *testing.T) {
	rec := serve(newRouter(&stubService{}, nil), nethttp.MethodGet, "/v1/dealerships/7/easycars/conflicts", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var body []Conflict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "won", body[0].LocalStatus)
}

func TestResolveConflictErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "resolved", err: nil, status: nethttp.StatusOK},
		{name: "not found", err: fmt.Errorf("%w: missing", application.ErrNotFound), status: nethttp.StatusNotFound},
		{name: "invalid", err: fmt.Errorf("%w: bad", application.ErrInvalidInput), status: nethttp.StatusBadRequest},
		{name: "already resolved", err: application.ErrConflictAlreadyResolved, status: nethttp.StatusConflict},
		{name: "deleted lead", err: leads.ErrCannotUndelete, status: nethttp.StatusConflict},
		{name: "unexpected", err: fmt.Errorf("db down"), status: nethttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(&stubService{resolveErr: tc.err}, nil)
			rec := serve(router, nethttp.MethodPost, "/v1/easycars/conflicts/c-1/resolve", `{"resolution":"accept_local"}`)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestResolveConflictRequiresResolution(t *testing.T) {
	rec := serve(newRouter(&stubService{}, nil), nethttp.MethodPost, "/v1/easycars/conflicts/c-1/resolve", `{}`)
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
}
