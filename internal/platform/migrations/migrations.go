package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&vehicleRecord{},
		&stockPayloadRecord{},
		&leadRecord{},
		&conflictRecord{},
		&credentialRecord{},
		&syncLogRecord{},
	)
}

// Vehicle schema mirrors the inventory Postgres adapter.
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

type stockPayloadRecord struct {
	VehicleID  int64          `gorm:"primaryKey;autoIncrement:false;column:vehicle_id"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb"`
	APIVersion string         `gorm:"column:api_version;type:varchar(32)"`
	SyncedAt   time.Time      `gorm:"column:synced_at"`
}

func (stockPayloadRecord) TableName() string { return "vehicle_stock_payloads" }

// Lead schema mirrors the leads Postgres adapter.
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

// Credential and sync log schemas mirror the easycars Postgres adapter.
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
