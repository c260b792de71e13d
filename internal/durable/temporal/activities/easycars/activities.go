package easycars

import (
	"context"
	"errors"
	"strings"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

const (
	SyncStockActivityName        = "easycars.activities.SyncStock"
	SyncLeadStatusesActivityName = "easycars.activities.SyncLeadStatuses"
	PushLeadActivityName         = "easycars.activities.PushLead"

	// ErrTypeTemporary marks a failed run Temporal should retry. The SyncResult travels as details.
	ErrTypeTemporary = "EasyCarsTemporary"
	// ErrTypeSyncFailed marks a failed run that retrying will not fix.
	ErrTypeSyncFailed = "EasyCarsSyncFailed"
)

// DealershipInput identifies the dealership a sync activity runs for.
type DealershipInput struct {
	DealershipID int64
}

// LeadInput identifies the lead to push.
type LeadInput struct {
	LeadID int64
}

// Activities exposes the EasyCars sync service to Temporal workers.
type Activities struct {
	service ports.Service
}

func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// SyncStock runs one stock pull.
func (a *Activities) SyncStock(ctx context.Context, input DealershipInput) (*domain.SyncResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return nil, errors.New("easycars activities not initialized")
	}
	logger.Info("SyncStock activity started", "dealershipId", input.DealershipID)
	result := a.service.SyncStock(ctx, input.DealershipID)
	logger.Info("SyncStock activity finished", "dealershipId", input.DealershipID, "status", result.Status)
	return retryOnTemporary(result)
}

// SyncLeadStatuses runs one inbound status reconciliation.
func (a *Activities) SyncLeadStatuses(ctx context.Context, input DealershipInput) (*domain.SyncResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return nil, errors.New("easycars activities not initialized")
	}
	logger.Info("SyncLeadStatuses activity started", "dealershipId", input.DealershipID)
	result := a.service.SyncLeadStatuses(ctx, input.DealershipID)
	logger.Info("SyncLeadStatuses activity finished", "dealershipId", input.DealershipID, "status", result.Status)
	return retryOnTemporary(result)
}

// PushLead sends one lead to EasyCars.
func (a *Activities) PushLead(ctx context.Context, input LeadInput) (*domain.SyncResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return nil, errors.New("easycars activities not initialized")
	}
	logger.Info("PushLead activity started", "leadId", input.LeadID, "attempt", activity.GetInfo(ctx).Attempt)
	result := a.service.PushLead(ctx, input.LeadID)
	logger.Info("PushLead activity finished", "leadId", input.LeadID, "status", result.Status)
	return retryOnTemporary(result)
}

// retryOnTemporary turns a retryable failed result into an activity error so the retry policy applies.
func retryOnTemporary(result *domain.SyncResult) (*domain.SyncResult, error) {
	if result == nil {
		return nil, errors.New("sync returned no result")
	}
	if result.Status == domain.SyncStatusFailed && result.Retryable {
		return nil, temporal.NewApplicationError(Summary(result), ErrTypeTemporary, result)
	}
	return result, nil
}

// Summary joins the run errors into one message.
func Summary(result *domain.SyncResult) string {
	if result == nil || len(result.Errors) == 0 {
		return "easycars sync failed"
	}
	return strings.Join(result.Errors, "; ")
}
