package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	"github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

var _ ports.ConflictRepository = (*ConflictStore)(nil)

// ConflictStore persists lead status conflicts in PostgreSQL.
type ConflictStore struct {
	db *gorm.DB
}

func NewConflictStore(db *gorm.DB) *ConflictStore {
	return &ConflictStore{db: db}
}

type conflictRecord struct {
	ID           string     `gorm:"primaryKey;column:id;size:36"`
	LeadID       int64      `gorm:"column:lead_id;index:idx_lead_conflicts_open"`
	DealershipID int64      `gorm:"column:dealership_id;index"`
	LocalStatus  string     `gorm:"column:local_status;type:varchar(32)"`
	RemoteStatus string     `gorm:"column:remote_status;type:varchar(32)"`
	Reason       string     `gorm:"column:reason;type:varchar(32)"`
	DetectedAt   time.Time  `gorm:"column:detected_at;index"`
	Resolved     bool       `gorm:"column:resolved;index:idx_lead_conflicts_open"`
	ResolvedAt   *time.Time `gorm:"column:resolved_at"`
	Resolution   string     `gorm:"column:resolution;type:varchar(32)"`
}

func (conflictRecord) TableName() string { return "lead_status_conflicts" }

func (s *ConflictStore) HasUnresolved(ctx context.Context, leadID int64) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&conflictRecord{}).
		Where("lead_id = ? AND resolved = ?", leadID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ConflictStore) Create(ctx context.Context, conflict *domain.StatusConflict) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if conflict == nil {
		return errors.New("conflict is nil")
	}
	record := toConflictRecord(conflict)
	return s.db.WithContext(ctx).Create(&record).Error
}

func (s *ConflictStore) GetByID(ctx context.Context, id string) (*domain.StatusConflict, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record conflictRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrConflictNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListUnresolved returns open conflicts oldest first.
func (s *ConflictStore) ListUnresolved(ctx context.Context, dealershipID int64) ([]*domain.StatusConflict, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []conflictRecord
	if err := s.db.WithContext(ctx).
		Where("dealership_id = ? AND resolved = ?", dealershipID, false).
		Order("detected_at").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.StatusConflict, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (s *ConflictStore) MarkResolved(ctx context.Context, conflict *domain.StatusConflict) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if conflict == nil {
		return errors.New("conflict is nil")
	}
	result := s.db.WithContext(ctx).Model(&conflictRecord{}).
		Where("id = ?", conflict.ID).
		Updates(map[string]any{
			"resolved":    conflict.Resolved,
			"resolved_at": conflict.ResolvedAt,
			"resolution":  string(conflict.Resolution),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrConflictNotFound
	}
	return nil
}

func (s *ConflictStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres conflict store not configured")
	}
	return nil
}

func toConflictRecord(c *domain.StatusConflict) conflictRecord {
	return conflictRecord{
		ID:           c.ID,
		LeadID:       c.LeadID,
		DealershipID: c.DealershipID,
		LocalStatus:  string(c.LocalStatus),
		RemoteStatus: string(c.RemoteStatus),
		Reason:       string(c.Reason),
		DetectedAt:   c.DetectedAt,
		Resolved:     c.Resolved,
		ResolvedAt:   c.ResolvedAt,
		Resolution:   string(c.Resolution),
	}
}

func (r conflictRecord) toDomain() *domain.StatusConflict {
	return &domain.StatusConflict{
		ID:           r.ID,
		LeadID:       r.LeadID,
		DealershipID: r.DealershipID,
		LocalStatus:  domain.Status(r.LocalStatus),
		RemoteStatus: domain.Status(r.RemoteStatus),
		Reason:       domain.ConflictReason(r.Reason),
		DetectedAt:   r.DetectedAt,
		Resolved:     r.Resolved,
		ResolvedAt:   r.ResolvedAt,
		Resolution:   domain.Resolution(r.Resolution),
	}
}
