package application

import (
	"context"

	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// ResolveConflict closes a status conflict. Accepting the remote status never revives a deleted lead.
func (s *Service) ResolveConflict(ctx context.Context, conflictID string, resolution leads.Resolution) (*leads.StatusConflict, error) {
	switch resolution {
	case leads.ResolutionAcceptLocal, leads.ResolutionAcceptRemote:
	default:
		return nil, mapError(ErrInvalidResolution)
	}
	conflict, err := s.conflicts.GetByID(ctx, conflictID)
	if err != nil {
		return nil, mapError(err)
	}
	if conflict.Resolved {
		return nil, ErrConflictAlreadyResolved
	}

	if resolution == leads.ResolutionAcceptRemote {
		lead, err := s.leads.GetByID(ctx, conflict.LeadID)
		if err != nil {
			return nil, mapError(err)
		}
		if err := lead.ApplyRemoteStatus(conflict.RemoteStatus); err != nil {
			return nil, mapError(err)
		}
		stamp := s.now().UTC()
		lead.LastSyncedFromRemote = &stamp
		if _, err := s.leads.Save(ctx, lead); err != nil {
			return nil, mapError(err)
		}
	}

	conflict.Resolve(resolution, s.now().UTC())
	if err := s.conflicts.MarkResolved(ctx, conflict); err != nil {
		return nil, mapError(err)
	}
	return conflict, nil
}

// ListOpenConflicts returns unresolved conflicts for a dealership.
func (s *Service) ListOpenConflicts(ctx context.Context, dealershipID int64) ([]*leads.StatusConflict, error) {
	conflicts, err := s.conflicts.ListUnresolved(ctx, dealershipID)
	if err != nil {
		return nil, mapError(err)
	}
	return conflicts, nil
}
