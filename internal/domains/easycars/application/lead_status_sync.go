package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// SyncLeadStatuses pulls remote statuses for every linked lead and applies the configured strategy.
// RemoteWins updates are persisted in one batch after the full pass.
func (s *Service) SyncLeadStatuses(ctx context.Context, dealershipID int64) *domain.SyncResult {
	started := s.now()
	result := domain.NewSyncResult(dealershipID, domain.SyncTypeLeadStatus)
	defer s.finish(ctx, result, started)

	release, ok := s.begin(result)
	defer release()
	if !ok {
		return result
	}

	creds, err := s.credentials.Load(ctx, dealershipID)
	if err != nil {
		s.failCredentials(result, err)
		return result
	}
	linked, err := s.leads.ListWithExternalLeadNumber(ctx, dealershipID)
	if err != nil {
		result.Fail(fmt.Sprintf("list linked leads: %v", err))
		return result
	}

	var updates []leads.StatusUpdate
	for _, lead := range linked {
		if s.cancelled(ctx, result) {
			return result
		}
		if !lead.HasExternalLeadNumber() {
			continue
		}
		update, err := s.reconcileLeadStatus(ctx, creds, lead, result)
		if err != nil {
			result.RecordFailure(fmt.Sprintf("lead %d (%s): %v", lead.ID, *lead.ExternalLeadNumber, err))
			continue
		}
		if update != nil {
			updates = append(updates, *update)
		}
		result.RecordSuccess()
	}

	if len(updates) == 0 {
		return result
	}
	if err := s.leads.UpdateStatuses(ctx, updates); err != nil {
		result.Fail(fmt.Sprintf("save %d status updates: %v", len(updates), err))
		return result
	}
	result.StatusesUpdated = len(updates)
	return result
}

func (s *Service) reconcileLeadStatus(ctx context.Context, creds client.Credentials, lead *leads.Lead, result *domain.SyncResult) (*leads.StatusUpdate, error) {
	detail, err := s.api.GetLeadDetail(ctx, creds, *lead.ExternalLeadNumber)
	if err != nil {
		return nil, errors.New(remoteMessage("fetching lead detail", err))
	}
	if detail.LeadStatus == nil {
		return nil, ErrMissingRemoteStatus
	}
	remote, err := MapLeadStatusFromInt(*detail.LeadStatus)
	if err != nil {
		return nil, err
	}

	decision := domain.ResolveStatusConflict(s.strategy, lead.Status, remote)
	switch decision {
	case domain.DecisionNoop, domain.DecisionKeepLocal:
		return nil, nil
	case domain.DecisionApplyRemote:
		return &leads.StatusUpdate{LeadID: lead.ID, Status: remote, SyncedAt: s.now().UTC()}, nil
	case domain.DecisionRecordConflict:
		return nil, s.openConflict(ctx, lead, remote, leads.ConflictReasonManualReview, result)
	case domain.DecisionBlockUndelete:
		return nil, s.openConflict(ctx, lead, remote, leads.ConflictReasonDeletedGuard, result)
	default:
		return nil, fmt.Errorf("unhandled status decision %s", decision)
	}
}

// openConflict records a conflict unless the lead already has an unresolved one.
func (s *Service) openConflict(ctx context.Context, lead *leads.Lead, remote leads.Status, reason leads.ConflictReason, result *domain.SyncResult) error {
	open, err := s.conflicts.HasUnresolved(ctx, lead.ID)
	if err != nil {
		return fmt.Errorf("check open conflicts: %w", err)
	}
	if open {
		return nil
	}
	conflict := leads.NewStatusConflict(s.newID(), lead, remote, reason, s.now().UTC())
	if err := s.conflicts.Create(ctx, conflict); err != nil {
		return fmt.Errorf("record conflict: %w", err)
	}
	result.ConflictsCreated++
	s.logger.LogAttrs(ctx, slog.LevelInfo, "lead status conflict recorded",
		slog.Int64("lead.id", lead.ID),
		slog.String("status.local", string(lead.Status)),
		slog.String("status.remote", string(remote)),
		slog.String("conflict.reason", string(reason)))
	return nil
}
