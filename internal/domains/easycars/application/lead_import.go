package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// ImportLead pulls one remote lead into the dealership, refreshing the local copy when it is already linked.
func (s *Service) ImportLead(ctx context.Context, dealershipID int64, leadNumber string) (*leads.Lead, *domain.SyncResult) {
	started := s.now()
	result := domain.NewSyncResult(dealershipID, domain.SyncTypeLead)
	defer s.finish(ctx, result, started)

	leadNumber = strings.TrimSpace(leadNumber)
	if leadNumber == "" {
		result.Fail(ErrMissingLeadNumber.Error())
		return nil, result
	}
	result.LeadNumber = leadNumber

	creds, err := s.credentials.Load(ctx, dealershipID)
	if err != nil {
		s.failCredentials(result, err)
		return nil, result
	}
	detail, err := s.api.GetLeadDetail(ctx, creds, leadNumber)
	if err != nil {
		s.failRemote(result, "fetching lead detail", err)
		return nil, result
	}

	now := s.now().UTC()
	existing, err := s.leads.GetByExternalLeadNumber(ctx, dealershipID, leadNumber)
	if err != nil {
		result.RecordFailure(fmt.Sprintf("lead %s: lookup: %v", leadNumber, err))
		return nil, result
	}
	var lead *leads.Lead
	if existing != nil && IsExistingLead(existing, detail) {
		if err := UpdateLeadFromResponse(existing, detail, now); err != nil {
			result.RecordFailure(fmt.Sprintf("lead %s: %v", leadNumber, err))
			return nil, result
		}
		lead = existing
	} else {
		lead, err = MapFromExternalLead(detail, dealershipID, now)
		if err != nil {
			result.RecordFailure(fmt.Sprintf("lead %s: %v", leadNumber, err))
			return nil, result
		}
	}

	saved, err := s.leads.Save(ctx, lead)
	if err != nil {
		result.RecordFailure(fmt.Sprintf("lead %s: save: %v", leadNumber, err))
		return nil, result
	}
	result.RecordSuccess()
	return saved, result
}
