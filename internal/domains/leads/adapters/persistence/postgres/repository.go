package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	"github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists leads in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type leadRecord struct {
	ID                     int64          `gorm:"primaryKey;column:id"`
	DealershipID           int64          `gorm:"column:dealership_id;index:idx_leads_dealership_external"`
	VehicleID              *int64         `gorm:"column:vehicle_id"`
	Name                   string         `gorm:"column:name"`
	Email                  string         `gorm:"column:email"`
	Phone                  string         `gorm:"column:phone"`
	Message                string         `gorm:"column:message;type:text"`
	Status                 string         `gorm:"column:status;type:varchar(32);index"`
	ExternalLeadNumber     *string        `gorm:"column:external_lead_number;index:idx_leads_dealership_external"`
	ExternalCustomerNumber *string        `gorm:"column:external_customer_number"`
	Rating                 *string        `gorm:"column:rating;type:varchar(16)"`
	FinanceInterest        bool           `gorm:"column:finance_interest"`
	VehicleInterestType    *string        `gorm:"column:vehicle_interest_type;type:varchar(32)"`
	RawPayload             datatypes.JSON `gorm:"column:raw_payload;type:jsonb"`
	LastSyncedToRemote     *time.Time     `gorm:"column:last_synced_to_remote"`
	LastSyncedFromRemote   *time.Time     `gorm:"column:last_synced_from_remote"`
	CreatedAt              time.Time      `gorm:"column:created_at"`
	UpdatedAt              time.Time      `gorm:"column:updated_at"`
}

func (leadRecord) TableName() string { return "leads" }

// GetByID fetches a lead by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record leadRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByExternalLeadNumber returns (nil, nil) when no lead carries the number.
func (r *Repository) GetByExternalLeadNumber(ctx context.Context, dealershipID int64, leadNumber string) (*domain.Lead, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []leadRecord
	if err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND external_lead_number = ?", dealershipID, strings.TrimSpace(leadNumber)).
		Order("id").Limit(1).Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain(), nil
}

// Save inserts a lead when ID is zero and overwrites it otherwise.
func (r *Repository) Save(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, errors.New("lead is nil")
	}
	record := toRecord(lead)
	db := r.db.WithContext(ctx)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return r.GetByID(ctx, record.ID)
	}
	result := db.Model(&leadRecord{ID: record.ID}).Select("*").Omit("id", "created_at").Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// ListWithExternalLeadNumber returns linked leads ordered by id.
func (r *Repository) ListWithExternalLeadNumber(ctx context.Context, dealershipID int64) ([]*domain.Lead, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []leadRecord
	if err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND external_lead_number IS NOT NULL AND external_lead_number <> ''", dealershipID).
		Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Lead, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

// UpdateStatuses writes every update in one transaction.
func (r *Repository) UpdateStatuses(ctx context.Context, updates []domain.StatusUpdate) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			result := tx.Model(&leadRecord{}).
				Where("id = ?", update.LeadID).
				Updates(map[string]any{
					"status":                  string(update.Status),
					"last_synced_from_remote": update.SyncedAt,
					"updated_at":              gorm.Expr("NOW()"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("lead %d: %w", update.LeadID, ports.ErrNotFound)
			}
		}
		return nil
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres lead repository not configured")
	}
	return nil
}

func toRecord(lead *domain.Lead) leadRecord {
	rec := leadRecord{
		ID:                     lead.ID,
		DealershipID:           lead.DealershipID,
		VehicleID:              lead.VehicleID,
		Name:                   lead.Name,
		Email:                  lead.Email,
		Phone:                  lead.Phone,
		Message:                lead.Message,
		Status:                 string(lead.Status),
		ExternalLeadNumber:     lead.ExternalLeadNumber,
		ExternalCustomerNumber: lead.ExternalCustomerNumber,
		FinanceInterest:        lead.FinanceInterest,
		LastSyncedToRemote:     lead.LastSyncedToRemote,
		LastSyncedFromRemote:   lead.LastSyncedFromRemote,
		CreatedAt:              lead.CreatedAt,
	}
	if lead.Rating != nil {
		rating := string(*lead.Rating)
		rec.Rating = &rating
	}
	if lead.VehicleInterestType != nil {
		interest := string(*lead.VehicleInterestType)
		rec.VehicleInterestType = &interest
	}
	if len(lead.RawPayload) > 0 {
		rec.RawPayload = datatypes.JSON(lead.RawPayload)
	}
	return rec
}

func (r leadRecord) toDomain() *domain.Lead {
	lead := &domain.Lead{
		ID:                     r.ID,
		DealershipID:           r.DealershipID,
		VehicleID:              r.VehicleID,
		Name:                   r.Name,
		Email:                  r.Email,
		Phone:                  r.Phone,
		Message:                r.Message,
		Status:                 domain.Status(r.Status),
		ExternalLeadNumber:     r.ExternalLeadNumber,
		ExternalCustomerNumber: r.ExternalCustomerNumber,
		FinanceInterest:        r.FinanceInterest,
		LastSyncedToRemote:     r.LastSyncedToRemote,
		LastSyncedFromRemote:   r.LastSyncedFromRemote,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
	if r.Rating != nil {
		rating := domain.Rating(*r.Rating)
		lead.Rating = &rating
	}
	if r.VehicleInterestType != nil {
		interest := domain.VehicleInterestType(*r.VehicleInterestType)
		lead.VehicleInterestType = &interest
	}
	if len(r.RawPayload) > 0 {
		lead.RawPayload = json.RawMessage(r.RawPayload)
	}
	return lead
}
