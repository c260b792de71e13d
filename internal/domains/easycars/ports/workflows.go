package ports

import (
	"context"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

// DealershipSyncResult pairs the stock and lead-status outcomes of a full pass.
type DealershipSyncResult struct {
	Stock      *domain.SyncResult
	LeadStatus *domain.SyncResult
	WorkflowID string
}

// WorkflowOrchestrator exposes durable workflow operations required by the EasyCars context.
type WorkflowOrchestrator interface {
	SyncDealership(ctx context.Context, dealershipID int64) (*DealershipSyncResult, error)
	PushLead(ctx context.Context, leadID int64) (*domain.SyncResult, error)
}
