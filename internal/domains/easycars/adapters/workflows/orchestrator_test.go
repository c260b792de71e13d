package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

type recordingService struct {
	calls []string
}

func (s *recordingService) SyncStock(_ context.Context, id int64) *domain.SyncResult {
	s.calls = append(s.calls, "stock")
	return domain.NewSyncResult(id, domain.SyncTypeStock)
}

func (s *recordingService) SyncLeadStatuses(_ context.Context, id int64) *domain.SyncResult {
	s.calls = append(s.calls, "status")
	return domain.NewSyncResult(id, domain.SyncTypeLeadStatus)
}

func (s *recordingService) PushLead(context.Context, int64) *domain.SyncResult {
	s.calls = append(s.calls, "push")
	r := domain.NewSyncResult(7, domain.SyncTypeLead)
	r.Fail("EasyCars error: rejected")
	return r
}

func (s *recordingService) ImportLead(context.Context, int64, string) (*leads.Lead, *domain.SyncResult) {
	return nil, nil
}

func (s *recordingService) ResolveConflict(context.Context, string, leads.Resolution) (*leads.StatusConflict, error) {
	return nil, nil
}

func (s *recordingService) ListSyncLogs(context.Context, int64, int) ([]domain.SyncLog, error) {
	return nil, nil
}

func (s *recordingService) ListOpenConflicts(context.Context, int64) ([]*leads.StatusConflict, error) {
	return nil, nil
}

func TestInlineSyncDealershipRunsBothSteps(t *testing.T) {
	svc := &recordingService{}
	out, err := NewInlineSyncWorkflows(svc).SyncDealership(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []string{"stock", "status"}, svc.calls)
	require.Equal(t, domain.SyncTypeStock, out.Stock.SyncType)
	require.Equal(t, domain.SyncTypeLeadStatus, out.LeadStatus.SyncType)
	require.Empty(t, out.WorkflowID)
}

func TestInlinePushLeadReturnsFailedResultWithoutError(t *testing.T) {
	svc := &recordingService{}
	result, err := NewInlineSyncWorkflows(svc).PushLead(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, domain.SyncStatusFailed, result.Status)
	require.Equal(t, []string{"push"}, svc.calls)
}

func TestUnconfiguredOrchestratorsError(t *testing.T) {
	_, err := NewTemporalSyncWorkflows(nil).SyncDealership(context.Background(), 7)
	require.Error(t, err)
	_, err = (*InlineSyncWorkflows)(nil).PushLead(context.Background(), 1)
	require.Error(t, err)
}
