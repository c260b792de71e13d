package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	eccrypto "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/crypto"
	ecflags "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/flags"
	ecmemory "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/memory"
	ecobs "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/observability"
	ecpostgres "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/persistence/postgres"
	ecstorage "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/storage"
	ecapp "github.com/Apurer/dealership-sync/internal/domains/easycars/application"
	ecports "github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	invmemory "github.com/Apurer/dealership-sync/internal/domains/inventory/adapters/memory"
	invpostgres "github.com/Apurer/dealership-sync/internal/domains/inventory/adapters/persistence/postgres"
	invports "github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	leadmemory "github.com/Apurer/dealership-sync/internal/domains/leads/adapters/memory"
	leadpostgres "github.com/Apurer/dealership-sync/internal/domains/leads/adapters/persistence/postgres"
	leadports "github.com/Apurer/dealership-sync/internal/domains/leads/ports"
	"github.com/Apurer/dealership-sync/internal/platform/migrations"
	platformobservability "github.com/Apurer/dealership-sync/internal/platform/observability"
	platformpostgres "github.com/Apurer/dealership-sync/internal/platform/postgres"
)

// Components is the wired EasyCars sync stack shared by the API, worker and CLI.
type Components struct {
	Service     ecports.Service
	Credentials ecports.CredentialWriter
	Encryptor   *eccrypto.AESDecryptor
}

type repositories struct {
	credentials interface {
		ecports.CredentialRepository
		ecports.CredentialWriter
	}
	syncLogs      ecports.SyncLogRepository
	vehicles      invports.VehicleRepository
	stockPayloads invports.StockPayloadRepository
	leads         leadports.Repository
	conflicts     leadports.ConflictRepository
}

// BuildComponents wires repositories (Postgres when reachable, memory otherwise), the EasyCars
// client, credential decryption, optional image import and the instrumented sync service.
func BuildComponents(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Components, func(), error) {
	logger := effectiveLogger(instruments)

	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	decryptor, err := eccrypto.NewAESDecryptor(cfg.EncryptionKey)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("configure credential decryption: %w", err)
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	api := client.NewClient(
		client.WithHTTPClient(httpClient),
		client.WithBaseURL(client.EnvironmentTest, cfg.TestBaseURL),
		client.WithBaseURL(client.EnvironmentProduction, cfg.ProductionBaseURL),
	)
	images, err := buildImageImporter(cfg, httpClient, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	opts := []ecapp.Option{
		ecapp.WithConflictStrategy(cfg.ConflictStrategy),
		ecapp.WithLogger(logger),
	}
	if cfg.RunGuard {
		opts = append(opts, ecapp.WithRunGuard(ecapp.NewRunGuard()))
	}
	core, err := ecapp.NewService(ecapp.Dependencies{
		Credentials:   repos.credentials,
		Decryptor:     decryptor,
		API:           api,
		Vehicles:      repos.vehicles,
		StockPayloads: repos.stockPayloads,
		Leads:         repos.leads,
		Conflicts:     repos.conflicts,
		SyncLogs:      repos.syncLogs,
		Images:        images,
	}, opts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build easycars service: %w", err)
	}
	service := ecobs.New(
		core,
		ecobs.WithLogger(logger),
		ecobs.WithTracer(instruments.Tracer("internal.easycars.application")),
		ecobs.WithMeter(instruments.Meter("internal.easycars.application")),
	)
	logger.Info("easycars sync service configured",
		slog.String("conflictStrategy", string(core.Strategy())),
		slog.Bool("imageImport", images != nil),
		slog.Bool("runGuard", cfg.RunGuard),
	)
	return &Components{Service: service, Credentials: repos.credentials, Encryptor: decryptor}, cleanup, nil
}

func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (repositories, func(), error) {
	db, cleanup := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return memoryRepositories(), cleanup, nil
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return repositories{}, nil, fmt.Errorf("apply schema migrations: %w", err)
	}
	logger.Info("repositories configured with postgres")
	return postgresRepositories(db), cleanup, nil
}

func memoryRepositories() repositories {
	return repositories{
		credentials:   ecmemory.NewCredentialStore(),
		syncLogs:      ecmemory.NewSyncLogStore(),
		vehicles:      invmemory.NewVehicleRepository(),
		stockPayloads: invmemory.NewStockPayloadRepository(),
		leads:         leadmemory.NewRepository(),
		conflicts:     leadmemory.NewConflictStore(),
	}
}

func postgresRepositories(db *gorm.DB) repositories {
	return repositories{
		credentials:   ecpostgres.NewCredentialRepository(db),
		syncLogs:      ecpostgres.NewSyncLogRepository(db),
		vehicles:      invpostgres.NewVehicleRepository(db),
		stockPayloads: invpostgres.NewStockPayloadRepository(db),
		leads:         leadpostgres.NewRepository(db),
		conflicts:     leadpostgres.NewConflictStore(db),
	}
}

// buildImageImporter returns nil when no upload service is configured, which disables image import.
func buildImageImporter(cfg Config, httpClient *http.Client, logger *slog.Logger) (*ecapp.ImageImporter, error) {
	if cfg.UploadServiceURL == "" {
		logger.Info("UPLOAD_SERVICE_URL not set, image import disabled")
		return nil, nil
	}
	overrides := map[string]bool{}
	if cfg.ImageSyncOverride != nil {
		overrides[ecports.ImageSyncFlag] = *cfg.ImageSyncOverride
	}
	flagStore, err := ecflags.LoadYAML(cfg.FeatureFlagsFile, overrides)
	if err != nil {
		return nil, err
	}
	uploader, err := ecstorage.NewHTTPUploader(cfg.UploadServiceURL, httpClient)
	if err != nil {
		return nil, err
	}
	return ecapp.NewImageImporter(ecstorage.NewHTTPDownloader(httpClient), uploader, flagStore, logger), nil
}
