package application

import (
	"errors"
	"fmt"

	ecports "github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	inventory "github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	invports "github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	leadports "github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid easycars sync input")
	// ErrNotFound signals a referenced lead, vehicle or conflict does not exist.
	ErrNotFound = errors.New("easycars sync resource not found")
	// ErrNoCredentials is returned when a dealership has no active EasyCars account.
	ErrNoCredentials = errors.New("no active easycars credentials")

	ErrNilStockItem            = errors.New("stock item is required")
	ErrNilLead                 = errors.New("lead is required")
	ErrNilLeadDetail           = errors.New("lead detail response is required")
	ErrMissingLeadNumber       = errors.New("external lead number is required")
	ErrUnknownLeadStatusCode   = errors.New("unknown easycars lead status code")
	ErrMissingRemoteStatus     = errors.New("remote lead has no status")
	ErrConflictAlreadyResolved = errors.New("lead status conflict already resolved")
	ErrInvalidResolution       = errors.New("unknown conflict resolution")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, inventory.ErrInvalidDealership) ||
		errors.Is(err, ErrNilStockItem) ||
		errors.Is(err, ErrNilLead) ||
		errors.Is(err, ErrMissingLeadNumber) ||
		errors.Is(err, ErrInvalidResolution) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, leadports.ErrNotFound) ||
		errors.Is(err, leadports.ErrConflictNotFound) ||
		errors.Is(err, invports.ErrNotFound) ||
		errors.Is(err, ecports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
