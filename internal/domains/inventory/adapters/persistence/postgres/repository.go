package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	"github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	"github.com/Apurer/dealership-sync/internal/shared/projection"
)

var (
	_ ports.VehicleRepository      = (*VehicleRepository)(nil)
	_ ports.StockPayloadRepository = (*StockPayloadRepository)(nil)
)

// VehicleRepository persists vehicles in PostgreSQL using GORM.
type VehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// vehicleRecord maps the vehicle aggregate to a relational table.
type vehicleRecord struct {
	ID                     int64           `gorm:"primaryKey;column:id"`
	DealershipID           int64           `gorm:"column:dealership_id;index:idx_vehicles_dealership_vin;index:idx_vehicles_dealership_stock"`
	Make                   string          `gorm:"column:make"`
	Model                  string          `gorm:"column:model"`
	Year                   int             `gorm:"column:year"`
	Price                  decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Mileage                int             `gorm:"column:mileage"`
	Condition              string          `gorm:"column:condition;type:varchar(16)"`
	Status                 string          `gorm:"column:status;type:varchar(16);index"`
	Title                  string          `gorm:"column:title"`
	Description            string          `gorm:"column:description;type:text"`
	BodyType               string          `gorm:"column:body_type"`
	Colour                 string          `gorm:"column:colour"`
	Transmission           string          `gorm:"column:transmission"`
	FuelType               string          `gorm:"column:fuel_type"`
	ImageURLs              pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	ExternalStockNumber    string          `gorm:"column:external_stock_number;index:idx_vehicles_dealership_stock"`
	ExternalYardCode       string          `gorm:"column:external_yard_code"`
	ExternalVIN            string          `gorm:"column:external_vin;index:idx_vehicles_dealership_vin"`
	DataSource             string          `gorm:"column:data_source;type:varchar(16)"`
	LastSyncedFromExternal *time.Time      `gorm:"column:last_synced_from_external"`
	CreatedAt              time.Time       `gorm:"column:created_at"`
	UpdatedAt              time.Time       `gorm:"column:updated_at"`
}

func (vehicleRecord) TableName() string { return "vehicles" }

// GetByID fetches a vehicle by identifier.
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Vehicle], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record vehicleRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// FindByVIN matches case-insensitively and returns the oldest match.
func (r *VehicleRepository) FindByVIN(ctx context.Context, dealershipID int64, vin string) (*domain.Vehicle, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if vin == "" {
		return nil, nil
	}
	return r.findFirst(ctx, "dealership_id = ? AND UPPER(external_vin) = ?", dealershipID, vin)
}

// FindByStockNumber returns the oldest vehicle carrying stockNumber.
func (r *VehicleRepository) FindByStockNumber(ctx context.Context, dealershipID int64, stockNumber string) (*domain.Vehicle, error) {
	stockNumber = strings.TrimSpace(stockNumber)
	if stockNumber == "" {
		return nil, nil
	}
	return r.findFirst(ctx, "dealership_id = ? AND external_stock_number = ?", dealershipID, stockNumber)
}

// Create inserts a vehicle and returns it with its assigned id.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (*projection.Projection[*domain.Vehicle], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, errors.New("vehicle is nil")
	}
	record := toVehicleRecord(vehicle)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update overwrites every column except the creation timestamp.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) (*projection.Projection[*domain.Vehicle], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, errors.New("vehicle is nil")
	}
	record := toVehicleRecord(vehicle)
	result := r.db.WithContext(ctx).
		Model(&vehicleRecord{ID: record.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// ListByDealership returns vehicles ordered by id.
func (r *VehicleRepository) ListByDealership(ctx context.Context, dealershipID int64) ([]*projection.Projection[*domain.Vehicle], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []vehicleRecord
	if err := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*projection.Projection[*domain.Vehicle], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *VehicleRepository) findFirst(ctx context.Context, query string, args ...any) (*domain.Vehicle, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []vehicleRecord
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id").Limit(1).Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain(), nil
}

func (r *VehicleRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres vehicle repository not configured")
	}
	return nil
}

func toVehicleRecord(v *domain.Vehicle) vehicleRecord {
	return vehicleRecord{
		ID:                     v.ID,
		DealershipID:           v.DealershipID,
		Make:                   v.Make,
		Model:                  v.Model,
		Year:                   v.Year,
		Price:                  v.Price,
		Mileage:                v.Mileage,
		Condition:              string(v.Condition),
		Status:                 string(v.Status),
		Title:                  v.Title,
		Description:            v.Description,
		BodyType:               v.BodyType,
		Colour:                 v.Colour,
		Transmission:           v.Transmission,
		FuelType:               v.FuelType,
		ImageURLs:              pq.StringArray(append([]string{}, v.ImageURLs...)),
		ExternalStockNumber:    v.ExternalStockNumber,
		ExternalYardCode:       v.ExternalYardCode,
		ExternalVIN:            v.ExternalVIN,
		DataSource:             string(v.DataSource),
		LastSyncedFromExternal: v.LastSyncedFromExternal,
	}
}

func (r vehicleRecord) toDomain() *domain.Vehicle {
	v := &domain.Vehicle{
		ID:                     r.ID,
		DealershipID:           r.DealershipID,
		Make:                   r.Make,
		Model:                  r.Model,
		Year:                   r.Year,
		Price:                  r.Price,
		Mileage:                r.Mileage,
		Condition:              domain.Condition(r.Condition),
		Status:                 domain.Status(r.Status),
		Title:                  r.Title,
		Description:            r.Description,
		BodyType:               r.BodyType,
		Colour:                 r.Colour,
		Transmission:           r.Transmission,
		FuelType:               r.FuelType,
		ExternalStockNumber:    r.ExternalStockNumber,
		ExternalYardCode:       r.ExternalYardCode,
		ExternalVIN:            r.ExternalVIN,
		DataSource:             domain.DataSource(r.DataSource),
		LastSyncedFromExternal: r.LastSyncedFromExternal,
	}
	if len(r.ImageURLs) > 0 {
		v.ImageURLs = append([]string{}, r.ImageURLs...)
	}
	return v
}

func (r vehicleRecord) toProjection() *projection.Projection[*domain.Vehicle] {
	return projection.New(r.toDomain(), r.CreatedAt, r.UpdatedAt)
}

// StockPayloadRepository stores raw remote stock records as JSONB.
type StockPayloadRepository struct {
	db *gorm.DB
}

func NewStockPayloadRepository(db *gorm.DB) *StockPayloadRepository {
	return &StockPayloadRepository{db: db}
}

type stockPayloadRecord struct {
	VehicleID  int64          `gorm:"primaryKey;autoIncrement:false;column:vehicle_id"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb"`
	APIVersion string         `gorm:"column:api_version;type:varchar(32)"`
	SyncedAt   time.Time      `gorm:"column:synced_at"`
}

func (stockPayloadRecord) TableName() string { return "vehicle_stock_payloads" }

// Upsert inserts or replaces the payload for a vehicle.
func (r *StockPayloadRepository) Upsert(ctx context.Context, payload domain.StockPayload) error {
	if r == nil || r.db == nil {
		return errors.New("postgres stock payload repository not configured")
	}
	record := stockPayloadRecord{
		VehicleID:  payload.VehicleID,
		Payload:    datatypes.JSON(payload.Payload),
		APIVersion: payload.APIVersion,
		SyncedAt:   payload.SyncedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "api_version", "synced_at"}),
		}).Create(&record).Error
}

func (r *StockPayloadRepository) Get(ctx context.Context, vehicleID int64) (*domain.StockPayload, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres stock payload repository not configured")
	}
	var record stockPayloadRecord
	if err := r.db.WithContext(ctx).First(&record, "vehicle_id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.StockPayload{
		VehicleID:  record.VehicleID,
		Payload:    []byte(record.Payload),
		APIVersion: record.APIVersion,
		SyncedAt:   record.SyncedAt,
	}, nil
}
