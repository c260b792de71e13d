package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

var (
	_ ports.CredentialRepository = (*CredentialRepository)(nil)
	_ ports.CredentialWriter     = (*CredentialRepository)(nil)
	_ ports.SyncLogRepository    = (*SyncLogRepository)(nil)
)

// CredentialRepository reads encrypted EasyCars credentials from PostgreSQL.
type CredentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

type credentialRecord struct {
	ID               int64     `gorm:"primaryKey;column:id"`
	DealershipID     int64     `gorm:"column:dealership_id;uniqueIndex"`
	ClientIDEnc      string    `gorm:"column:client_id_enc;type:text"`
	ClientSecretEnc  string    `gorm:"column:client_secret_enc;type:text"`
	AccountNumberEnc string    `gorm:"column:account_number_enc;type:text"`
	AccountSecretEnc string    `gorm:"column:account_secret_enc;type:text"`
	IV               string    `gorm:"column:iv;type:varchar(64)"`
	Environment      string    `gorm:"column:environment;type:varchar(16)"`
	YardCode         string    `gorm:"column:yard_code"`
	Active           bool      `gorm:"column:active"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (credentialRecord) TableName() string { return "easycars_credentials" }

// GetByDealership returns (nil, nil) when the dealership has no credential row.
func (r *CredentialRepository) GetByDealership(ctx context.Context, dealershipID int64) (*domain.Credential, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []credentialRecord
	if err := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Limit(1).Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain(), nil
}

// Save upserts the credential keyed by dealership.
func (r *CredentialRepository) Save(ctx context.Context, cred domain.Credential) (*domain.Credential, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := credentialRecord{
		ID:               cred.ID,
		DealershipID:     cred.DealershipID,
		ClientIDEnc:      cred.ClientIDEnc,
		ClientSecretEnc:  cred.ClientSecretEnc,
		AccountNumberEnc: cred.AccountNumberEnc,
		AccountSecretEnc: cred.AccountSecretEnc,
		IV:               cred.IV,
		Environment:      string(domain.ParseEnvironment(string(cred.Environment))),
		YardCode:         cred.YardCode,
		Active:           cred.Active,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dealership_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"client_id_enc", "client_secret_enc", "account_number_enc", "account_secret_enc",
			"iv", "environment", "yard_code", "active", "updated_at",
		}),
	}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByDealership(ctx, cred.DealershipID)
}

func (r *CredentialRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres credential repository not configured")
	}
	return nil
}

func (rec credentialRecord) toDomain() *domain.Credential {
	return &domain.Credential{
		ID:               rec.ID,
		DealershipID:     rec.DealershipID,
		ClientIDEnc:      rec.ClientIDEnc,
		ClientSecretEnc:  rec.ClientSecretEnc,
		AccountNumberEnc: rec.AccountNumberEnc,
		AccountSecretEnc: rec.AccountSecretEnc,
		IV:               rec.IV,
		Environment:      domain.ParseEnvironment(rec.Environment),
		YardCode:         rec.YardCode,
		Active:           rec.Active,
	}
}

// SyncLogRepository appends sync audit records to PostgreSQL.
type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

type syncLogRecord struct {
	ID             string         `gorm:"primaryKey;column:id;size:36"`
	DealershipID   int64          `gorm:"column:dealership_id;index:idx_sync_logs_dealership_synced"`
	SyncType       string         `gorm:"column:sync_type;type:varchar(16)"`
	Status         string         `gorm:"column:status;type:varchar(16)"`
	ItemsProcessed int            `gorm:"column:items_processed"`
	ItemsSucceeded int            `gorm:"column:items_succeeded"`
	ItemsFailed    int            `gorm:"column:items_failed"`
	Errors         pq.StringArray `gorm:"column:errors;type:text[]"`
	DurationMS     int64          `gorm:"column:duration_ms"`
	SyncedAt       time.Time      `gorm:"column:synced_at;index:idx_sync_logs_dealership_synced"`
}

func (syncLogRecord) TableName() string { return "easycars_sync_logs" }

func (r *SyncLogRepository) Save(ctx context.Context, log domain.SyncLog) error {
	if r == nil || r.db == nil {
		return errors.New("postgres sync log repository not configured")
	}
	record := syncLogRecord{
		ID:             log.ID,
		DealershipID:   log.DealershipID,
		SyncType:       string(log.SyncType),
		Status:         string(log.Status),
		ItemsProcessed: log.ItemsProcessed,
		ItemsSucceeded: log.ItemsSucceeded,
		ItemsFailed:    log.ItemsFailed,
		Errors:         pq.StringArray(log.Errors),
		DurationMS:     log.Duration.Milliseconds(),
		SyncedAt:       log.SyncedAt,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

// ListByDealership returns the newest logs first.
func (r *SyncLogRepository) ListByDealership(ctx context.Context, dealershipID int64, limit int) ([]domain.SyncLog, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres sync log repository not configured")
	}
	query := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Order("synced_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []syncLogRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	logs := make([]domain.SyncLog, 0, len(records))
	for _, rec := range records {
		logs = append(logs, domain.SyncLog{
			ID:             rec.ID,
			DealershipID:   rec.DealershipID,
			SyncType:       domain.SyncType(rec.SyncType),
			Status:         domain.SyncStatus(rec.Status),
			ItemsProcessed: rec.ItemsProcessed,
			ItemsSucceeded: rec.ItemsSucceeded,
			ItemsFailed:    rec.ItemsFailed,
			Errors:         []string(rec.Errors),
			Duration:       time.Duration(rec.DurationMS) * time.Millisecond,
			SyncedAt:       rec.SyncedAt,
		})
	}
	return logs, nil
}
