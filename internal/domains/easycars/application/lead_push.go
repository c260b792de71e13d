package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	inventory "github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	invports "github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	leadports "github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

// PushLead sends a local lead to EasyCars, creating it remotely on first push.
// Temporary remote failures set Retryable; retrying is left to the caller.
func (s *Service) PushLead(ctx context.Context, leadID int64) *domain.SyncResult {
	started := s.now()
	result := domain.NewSyncResult(0, domain.SyncTypeLead)
	defer s.finish(ctx, result, started)

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, leadports.ErrNotFound) {
			result.Fail(fmt.Sprintf("lead %d not found", leadID))
		} else {
			result.Fail(fmt.Sprintf("load lead %d: %v", leadID, err))
		}
		return result
	}
	result.DealershipID = lead.DealershipID

	creds, err := s.credentials.Load(ctx, lead.DealershipID)
	if err != nil {
		s.failCredentials(result, err)
		return result
	}
	vehicle, err := s.linkedVehicle(ctx, lead)
	if err != nil {
		result.RecordFailure(fmt.Sprintf("lead %d: load vehicle: %v", lead.ID, err))
		return result
	}

	if lead.HasExternalLeadNumber() {
		err = s.updateRemoteLead(ctx, creds, lead, vehicle)
	} else {
		err = s.createRemoteLead(ctx, creds, lead, vehicle)
	}
	if err != nil {
		result.Retryable = client.IsTemporary(err)
		result.RecordFailure(fmt.Sprintf("lead %d: %s", lead.ID, remoteMessage("pushing lead", err)))
		return result
	}
	if lead.ExternalLeadNumber != nil {
		result.LeadNumber = *lead.ExternalLeadNumber
	}
	result.RecordSuccess()
	return result
}

func (s *Service) createRemoteLead(ctx context.Context, creds client.Credentials, lead *leads.Lead, vehicle *inventory.Vehicle) error {
	req, err := MapToCreateRequest(lead, creds.AccountNumber, creds.AccountSecret, vehicle)
	if err != nil {
		return err
	}
	resp, err := s.api.CreateLead(ctx, creds, req)
	if err != nil {
		return err
	}
	lead.LinkExternal(resp.LeadNumber, resp.CustomerNo, s.now().UTC())
	if _, err := s.leads.Save(ctx, lead); err != nil {
		// The remote lead exists but is unlinked; the next push would create a duplicate.
		s.logger.LogAttrs(ctx, slog.LevelError, "easycars lead created but local link not saved",
			slog.Int64("lead.id", lead.ID),
			slog.Int64("dealership.id", lead.DealershipID),
			slog.String("lead.number", resp.LeadNumber),
			slog.String("customer.number", resp.CustomerNo),
			slog.String("error", err.Error()))
		return fmt.Errorf("store external lead number %s: %w", resp.LeadNumber, err)
	}
	return nil
}

func (s *Service) updateRemoteLead(ctx context.Context, creds client.Credentials, lead *leads.Lead, vehicle *inventory.Vehicle) error {
	req, err := MapToUpdateRequest(lead, *lead.ExternalLeadNumber, creds.AccountNumber, creds.AccountSecret, vehicle)
	if err != nil {
		return err
	}
	if _, err := s.api.UpdateLead(ctx, creds, req); err != nil {
		return err
	}
	stamp := s.now().UTC()
	lead.LastSyncedToRemote = &stamp
	if _, err := s.leads.Save(ctx, lead); err != nil {
		return fmt.Errorf("stamp lead sync time: %w", err)
	}
	return nil
}

// linkedVehicle skips the lookup entirely when the lead has no vehicle.
func (s *Service) linkedVehicle(ctx context.Context, lead *leads.Lead) (*inventory.Vehicle, error) {
	if lead.VehicleID == nil {
		return nil, nil
	}
	projection, err := s.vehicles.GetByID(ctx, *lead.VehicleID)
	if err != nil {
		if errors.Is(err, invports.ErrNotFound) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "lead references a missing vehicle",
				slog.Int64("lead.id", lead.ID), slog.Int64("vehicle.id", *lead.VehicleID))
			return nil, nil
		}
		return nil, err
	}
	return projection.Entity, nil
}
