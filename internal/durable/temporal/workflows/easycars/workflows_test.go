package easycars

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	easycarsactivities "github.com/Apurer/dealership-sync/internal/durable/temporal/activities/easycars"
	"github.com/Apurer/dealership-sync/internal/durable/temporal/sequences"
)

// scriptedService returns queued results per operation; the last result repeats.
type scriptedService struct {
	mu      sync.Mutex
	stock   []*domain.SyncResult
	status  []*domain.SyncResult
	push    []*domain.SyncResult
	calls   map[string]int
	ordered []string
}

func (s *scriptedService) next(op string, queue []*domain.SyncResult) *domain.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	idx := s.calls[op]
	s.calls[op]++
	s.ordered = append(s.ordered, op)
	if idx >= len(queue) {
		idx = len(queue) - 1
	}
	copied := *queue[idx]
	return &copied
}

func (s *scriptedService) SyncStock(context.Context, int64) *domain.SyncResult {
	return s.next("stock", s.stock)
}

func (s *scriptedService) SyncLeadStatuses(context.Context, int64) *domain.SyncResult {
	return s.next("status", s.status)
}

func (s *scriptedService) PushLead(context.Context, int64) *domain.SyncResult {
	return s.next("push", s.push)
}

func (s *scriptedService) ImportLead(context.Context, int64, string) (*leads.Lead, *domain.SyncResult) {
	return nil, nil
}

func (s *scriptedService) ResolveConflict(context.Context, string, leads.Resolution) (*leads.StatusConflict, error) {
	return nil, errors.New("not used")
}

func (s *scriptedService) ListSyncLogs(context.Context, int64, int) ([]domain.SyncLog, error) {
	return nil, nil
}

func (s *scriptedService) ListOpenConflicts(context.Context, int64) ([]*leads.StatusConflict, error) {
	return nil, nil
}

func succeeded(syncType domain.SyncType) *domain.SyncResult {
	r := domain.NewSyncResult(7, syncType)
	r.RecordSuccess()
	r.Finalize(0)
	return r
}

func failed(syncType domain.SyncType, retryable bool, msg string) *domain.SyncResult {
	r := domain.NewSyncResult(7, syncType)
	r.Fail(msg)
	r.Retryable = retryable
	return r
}

func newEnv(t *testing.T, svc *scriptedService) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := easycarsactivities.NewActivities(svc)
	env.RegisterActivityWithOptions(acts.SyncStock, activity.RegisterOptions{Name: easycarsactivities.SyncStockActivityName})
	env.RegisterActivityWithOptions(acts.SyncLeadStatuses, activity.RegisterOptions{Name: easycarsactivities.SyncLeadStatusesActivityName})
	env.RegisterActivityWithOptions(acts.PushLead, activity.RegisterOptions{Name: easycarsactivities.PushLeadActivityName})
	return env
}

func TestDealershipSyncRunsStockThenLeadStatuses(t *testing.T) {
	svc := &scriptedService{
		stock:  []*domain.SyncResult{succeeded(domain.SyncTypeStock)},
		status: []*domain.SyncResult{succeeded(domain.SyncTypeLeadStatus)},
	}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(DealershipSyncWorkflow, DealershipSyncWorkflowInput{DealershipID: 7})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var out DealershipSyncWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, domain.SyncStatusSuccess, out.Stock.Status)
	require.Equal(t, domain.SyncStatusSuccess, out.LeadStatus.Status)
	require.Equal(t, []string{"stock", "status"}, svc.ordered)
}

func TestDealershipSyncContinuesAfterPermanentStockFailure(t *testing.T) {
	svc := &scriptedService{
		stock:  []*domain.SyncResult{failed(domain.SyncTypeStock, false, "No EasyCars credentials configured for dealership 7")},
		status: []*domain.SyncResult{succeeded(domain.SyncTypeLeadStatus)},
	}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(DealershipSyncWorkflow, DealershipSyncWorkflowInput{DealershipID: 7})

	require.NoError(t, env.GetWorkflowError())
	var out DealershipSyncWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, domain.SyncStatusFailed, out.Stock.Status)
	require.Equal(t, domain.SyncStatusSuccess, out.LeadStatus.Status)
	require.Equal(t, 1, svc.calls["stock"])
}

func TestDealershipSyncRetriesTemporaryStockFailure(t *testing.T) {
	svc := &scriptedService{
		stock: []*domain.SyncResult{
			failed(domain.SyncTypeStock, true, "temporary EasyCars error"),
			succeeded(domain.SyncTypeStock),
		},
		status: []*domain.SyncResult{succeeded(domain.SyncTypeLeadStatus)},
	}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(DealershipSyncWorkflow, DealershipSyncWorkflowInput{DealershipID: 7})

	require.NoError(t, env.GetWorkflowError())
	var out DealershipSyncWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, domain.SyncStatusSuccess, out.Stock.Status)
	require.Equal(t, 2, svc.calls["stock"])
}

func TestLeadPushRetriesUntilSuccess(t *testing.T) {
	ok := succeeded(domain.SyncTypeLead)
	ok.LeadNumber = "LN-1"
	svc := &scriptedService{push: []*domain.SyncResult{
		failed(domain.SyncTypeLead, true, "temporary EasyCars error"),
		failed(domain.SyncTypeLead, true, "temporary EasyCars error"),
		ok,
	}}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(LeadPushWorkflow, LeadPushWorkflowInput{LeadID: 42})

	require.NoError(t, env.GetWorkflowError())
	var out domain.SyncResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "LN-1", out.LeadNumber)
	require.Equal(t, 3, svc.calls["push"])
}

func TestLeadPushPermanentFailureIsNotRetried(t *testing.T) {
	svc := &scriptedService{push: []*domain.SyncResult{
		failed(domain.SyncTypeLead, false, "EasyCars error (code 5): invalid email"),
	}}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(LeadPushWorkflow, LeadPushWorkflowInput{LeadID: 42})

	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, easycarsactivities.ErrTypeSyncFailed, appErr.Type())
	require.True(t, appErr.NonRetryable())
	result, ok := sequences.ResultFromError(err)
	require.True(t, ok)
	require.Equal(t, domain.SyncStatusFailed, result.Status)
	require.Equal(t, 1, svc.calls["push"])
}
