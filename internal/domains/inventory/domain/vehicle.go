package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Condition describes whether a vehicle is sold as new or used.
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Status represents the listing lifecycle of a vehicle on the dealership website.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusSold    Status = "sold"
)

// DataSource records who owns the vehicle record.
type DataSource string

const (
	// DataSourceManual marks vehicles entered by dealership staff. Sync never overwrites them.
	DataSourceManual DataSource = "manual"
	// DataSourceExternal marks vehicles created or refreshed from the EasyCars stock feed.
	DataSourceExternal DataSource = "external"
)

// ErrInvalidDealership is returned when a dealership id is not a positive integer.
var ErrInvalidDealership = errors.New("dealership id must be positive")

// MinimumYear is the oldest model year accepted for a listing.
const MinimumYear = 1900

// Vehicle is a dealership-scoped inventory record.
type Vehicle struct {
	ID                     int64
	DealershipID           int64
	Make                   string
	Model                  string
	Year                   int
	Price                  decimal.Decimal
	Mileage                int
	Condition              Condition
	Status                 Status
	Title                  string
	Description            string
	BodyType               string
	Colour                 string
	Transmission           string
	FuelType               string
	ImageURLs              []string
	ExternalStockNumber    string
	ExternalYardCode       string
	ExternalVIN            string
	DataSource             DataSource
	LastSyncedFromExternal *time.Time
}

// IsManual reports whether staff own this record.
func (v *Vehicle) IsManual() bool {
	return v != nil && v.DataSource != DataSourceExternal
}

// Key returns the identifiers used for duplicate detection.
func (v *Vehicle) Key() Key {
	if v == nil {
		return Key{}
	}
	return Key{VIN: v.ExternalVIN, StockNumber: v.ExternalStockNumber}
}

// ReplaceImages swaps the ordered image list.
func (v *Vehicle) ReplaceImages(urls []string) {
	if len(urls) == 0 {
		v.ImageURLs = nil
		return
	}
	v.ImageURLs = append([]string{}, urls...)
}

// MarkSynced stamps the last time the external feed refreshed this vehicle.
func (v *Vehicle) MarkSynced(at time.Time) {
	stamp := at
	v.LastSyncedFromExternal = &stamp
}

// Clone returns a deep copy.
func (v *Vehicle) Clone() *Vehicle {
	if v == nil {
		return nil
	}
	clone := *v
	if len(v.ImageURLs) > 0 {
		clone.ImageURLs = append([]string{}, v.ImageURLs...)
	}
	if v.LastSyncedFromExternal != nil {
		stamp := *v.LastSyncedFromExternal
		clone.LastSyncedFromExternal = &stamp
	}
	return &clone
}

// Key identifies a vehicle inside a dealership. Either field may be empty.
type Key struct {
	VIN         string
	StockNumber string
}

// Normalized trims whitespace and upper-cases the VIN.
func (k Key) Normalized() Key {
	return Key{
		VIN:         strings.ToUpper(strings.TrimSpace(k.VIN)),
		StockNumber: strings.TrimSpace(k.StockNumber),
	}
}

// IsEmpty reports whether neither identifier is present.
func (k Key) IsEmpty() bool {
	n := k.Normalized()
	return n.VIN == "" && n.StockNumber == ""
}

// PlausibleYear reports whether year is a sane model year relative to now.
// Next year's models are allowed since they are sold from the previous spring.
func PlausibleYear(year int, now time.Time) bool {
	return year >= MinimumYear && year <= now.Year()+1
}
