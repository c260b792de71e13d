package ports

import (
	"context"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// Service defines the EasyCars sync use cases exposed to adapters (inbound/driving port).
// Sync operations never return an error; failures are folded into the result.
type Service interface {
	SyncStock(ctx context.Context, dealershipID int64) *domain.SyncResult
	PushLead(ctx context.Context, leadID int64) *domain.SyncResult
	SyncLeadStatuses(ctx context.Context, dealershipID int64) *domain.SyncResult
	ImportLead(ctx context.Context, dealershipID int64, leadNumber string) (*leads.Lead, *domain.SyncResult)
	ResolveConflict(ctx context.Context, conflictID string, resolution leads.Resolution) (*leads.StatusConflict, error)
	ListSyncLogs(ctx context.Context, dealershipID int64, limit int) ([]domain.SyncLog, error)
	ListOpenConflicts(ctx context.Context, dealershipID int64) ([]*leads.StatusConflict, error)
}
