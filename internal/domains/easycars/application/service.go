package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	invports "github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	leadports "github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

const (
	defaultSyncLogLimit = 50
	maxSyncLogLimit     = 500
)

var _ ports.Service = (*Service)(nil)

// Dependencies are the collaborators the sync service needs.
type Dependencies struct {
	Credentials   ports.CredentialRepository
	Decryptor     ports.Decryptor
	API           ports.EasyCarsAPI
	Vehicles      invports.VehicleRepository
	StockPayloads invports.StockPayloadRepository
	Leads         leadports.Repository
	Conflicts     leadports.ConflictRepository
	SyncLogs      ports.SyncLogRepository
	Images        *ImageImporter
}

// Service orchestrates the EasyCars stock, lead and status synchronisation use cases.
type Service struct {
	credentials *CredentialProvider
	api         ports.EasyCarsAPI
	vehicles    invports.VehicleRepository
	stock       *StockMapper
	leads       leadports.Repository
	conflicts   leadports.ConflictRepository
	syncLogs    ports.SyncLogRepository
	strategy    domain.ConflictStrategy
	guard       *RunGuard
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures the service.
type Option func(*Service)

// WithConflictStrategy selects how inbound status disagreements are handled.
func WithConflictStrategy(strategy domain.ConflictStrategy) Option {
	return func(s *Service) {
		if strategy != "" {
			s.strategy = strategy
		}
	}
}

// WithRunGuard rejects overlapping runs for the same dealership.
func WithRunGuard(guard *RunGuard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the sync service with its dependencies.
func NewService(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.Credentials == nil || deps.Decryptor == nil:
		return nil, errors.New("easycars credential store and decryptor are required")
	case deps.API == nil:
		return nil, errors.New("easycars api client is required")
	case deps.Vehicles == nil || deps.StockPayloads == nil:
		return nil, errors.New("vehicle repositories are required")
	case deps.Leads == nil || deps.Conflicts == nil:
		return nil, errors.New("lead repositories are required")
	case deps.SyncLogs == nil:
		return nil, errors.New("sync log repository is required")
	}
	s := &Service{
		credentials: NewCredentialProvider(deps.Credentials, deps.Decryptor),
		api:         deps.API,
		vehicles:    deps.Vehicles,
		leads:       deps.Leads,
		conflicts:   deps.Conflicts,
		syncLogs:    deps.SyncLogs,
		strategy:    domain.StrategyRemoteWins,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.stock = NewStockMapper(deps.Vehicles, deps.StockPayloads, deps.Images, s.logger, s.now)
	return s, nil
}

// Strategy reports the configured conflict strategy.
func (s *Service) Strategy() domain.ConflictStrategy {
	return s.strategy
}

// ListSyncLogs returns the most recent runs for a dealership, newest first.
func (s *Service) ListSyncLogs(ctx context.Context, dealershipID int64, limit int) ([]domain.SyncLog, error) {
	if dealershipID <= 0 {
		return nil, fmt.Errorf("%w: dealership id must be positive", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultSyncLogLimit
	}
	if limit > maxSyncLogLimit {
		limit = maxSyncLogLimit
	}
	logs, err := s.syncLogs.ListByDealership(ctx, dealershipID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return logs, nil
}

// begin acquires the run guard; the returned release is always safe to call.
func (s *Service) begin(result *domain.SyncResult) (func(), bool) {
	release, ok := s.guard.TryAcquire(result.DealershipID, result.SyncType)
	if !ok {
		result.Fail(fmt.Sprintf("%s sync already in progress for dealership %d", result.SyncType, result.DealershipID))
		return func() {}, false
	}
	return release, true
}

// finish finalizes result and writes its audit record. Audit failures are logged only.
func (s *Service) finish(ctx context.Context, result *domain.SyncResult, started time.Time) {
	result.Finalize(s.now().Sub(started))
	if result.DealershipID <= 0 {
		return
	}
	auditCtx := context.WithoutCancel(ctx)
	entry := domain.NewSyncLog(s.newID(), result, s.now().UTC())
	if err := s.syncLogs.Save(auditCtx, entry); err != nil {
		s.logger.LogAttrs(auditCtx, slog.LevelError, "failed to write sync log",
			slog.Int64("dealership.id", result.DealershipID),
			slog.String("sync.type", string(result.SyncType)),
			slog.String("error", err.Error()))
	}
}

func (s *Service) failCredentials(result *domain.SyncResult, err error) {
	if errors.Is(err, ErrNoCredentials) {
		result.Fail(fmt.Sprintf("No EasyCars credentials configured for dealership %d", result.DealershipID))
		return
	}
	result.Fail(fmt.Sprintf("resolve EasyCars credentials: %v", err))
}

func (s *Service) failRemote(result *domain.SyncResult, action string, err error) {
	result.Retryable = client.IsTemporary(err)
	result.Fail(remoteMessage(action, err))
}

func (s *Service) cancelled(ctx context.Context, result *domain.SyncResult) bool {
	if err := ctx.Err(); err != nil {
		result.Fail(fmt.Sprintf("sync cancelled: %v", err))
		return true
	}
	return false
}

func remoteMessage(action string, err error) string {
	if client.IsTemporary(err) {
		return fmt.Sprintf("temporary EasyCars error %s: %v", action, err)
	}
	return fmt.Sprintf("EasyCars error %s: %v", action, err)
}
