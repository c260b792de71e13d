package ports

import (
	"context"
	"errors"

	"github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

var (
	ErrNotFound         = errors.New("lead not found")
	ErrConflictNotFound = errors.New("lead status conflict not found")
)

// Repository persists leads.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	// GetByExternalLeadNumber returns (nil, nil) when no lead carries the number.
	GetByExternalLeadNumber(ctx context.Context, dealershipID int64, leadNumber string) (*domain.Lead, error)
	Save(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	ListWithExternalLeadNumber(ctx context.Context, dealershipID int64) ([]*domain.Lead, error)
	// UpdateStatuses applies all updates as one unit of work.
	UpdateStatuses(ctx context.Context, updates []domain.StatusUpdate) error
}

// ConflictRepository persists lead status conflicts.
type ConflictRepository interface {
	HasUnresolved(ctx context.Context, leadID int64) (bool, error)
	Create(ctx context.Context, conflict *domain.StatusConflict) error
	GetByID(ctx context.Context, id string) (*domain.StatusConflict, error)
	ListUnresolved(ctx context.Context, dealershipID int64) ([]*domain.StatusConflict, error)
	MarkResolved(ctx context.Context, conflict *domain.StatusConflict) error
}
