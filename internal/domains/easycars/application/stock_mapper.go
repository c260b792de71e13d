package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	inventory "github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	invports "github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
)

const (
	unknownValue       = "Unknown"
	defaultDescription = "No description available"
)

// StockOutcome describes what the mapper did with one remote stock item.
type StockOutcome string

const (
	StockCreated StockOutcome = "created"
	StockUpdated StockOutcome = "updated"
	StockSkipped StockOutcome = "skipped"
)

// StockMapResult is the reconciled vehicle and the path taken.
type StockMapResult struct {
	Vehicle        *inventory.Vehicle
	Outcome        StockOutcome
	ImagesImported int
	ImagesFailed   int
}

// StockMapper reconciles remote stock items with local inventory.
type StockMapper struct {
	vehicles invports.VehicleRepository
	payloads invports.StockPayloadRepository
	images   *ImageImporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewStockMapper wires the mapper. images may be nil to disable photo import.
func NewStockMapper(vehicles invports.VehicleRepository, payloads invports.StockPayloadRepository, images *ImageImporter, logger *slog.Logger, now func() time.Time) *StockMapper {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StockMapper{vehicles: vehicles, payloads: payloads, images: images, logger: logger, now: now}
}

// Map creates, updates or skips the local vehicle for item.
// Repository errors are returned unwrapped from the store.
func (m *StockMapper) Map(ctx context.Context, item *client.StockItem, dealershipID int64) (StockMapResult, error) {
	if dealershipID <= 0 {
		return StockMapResult{}, inventory.ErrInvalidDealership
	}
	if item == nil {
		return StockMapResult{}, ErrNilStockItem
	}
	now := m.now().UTC()

	key := inventory.Key{VIN: item.VIN, StockNumber: item.StockNumber}.Normalized()
	existing, err := m.findExisting(ctx, dealershipID, key)
	if err != nil {
		return StockMapResult{}, err
	}
	if existing != nil && existing.IsManual() {
		// The snapshot is kept even though the manual vehicle itself is left alone.
		if err := m.storePayload(ctx, existing.ID, item, now); err != nil {
			return StockMapResult{}, err
		}
		return StockMapResult{Vehicle: existing, Outcome: StockSkipped}, nil
	}
	if existing != nil {
		if err := m.warnStockNumberClash(ctx, dealershipID, existing, key.StockNumber); err != nil {
			return StockMapResult{}, err
		}
	}

	var (
		vehicle *inventory.Vehicle
		outcome StockOutcome
	)
	if existing != nil {
		vehicle = existing.Clone()
		outcome = StockUpdated
	} else {
		vehicle = &inventory.Vehicle{DealershipID: dealershipID}
		outcome = StockCreated
	}
	applyStockItem(vehicle, item, now)

	if outcome == StockCreated {
		created, err := m.vehicles.Create(ctx, vehicle)
		if err != nil {
			return StockMapResult{}, err
		}
		vehicle = created.Entity
	}

	result := StockMapResult{Outcome: outcome}
	images := m.images.ImportAll(ctx, item.ImageURLs, vehicle.ID)
	result.ImagesImported = len(images.URLs)
	result.ImagesFailed = images.Failed()
	if len(images.URLs) > 0 {
		vehicle.ReplaceImages(images.URLs)
	}

	if outcome == StockUpdated || len(images.URLs) > 0 {
		updated, err := m.vehicles.Update(ctx, vehicle)
		if err != nil {
			return StockMapResult{}, err
		}
		vehicle = updated.Entity
	}

	if err := m.storePayload(ctx, vehicle.ID, item, now); err != nil {
		return StockMapResult{}, err
	}
	result.Vehicle = vehicle
	return result, nil
}

func (m *StockMapper) findExisting(ctx context.Context, dealershipID int64, key inventory.Key) (*inventory.Vehicle, error) {
	if key.VIN != "" {
		found, err := m.vehicles.FindByVIN(ctx, dealershipID, key.VIN)
		if err != nil || found != nil {
			return found, err
		}
	}
	if key.StockNumber != "" {
		return m.vehicles.FindByStockNumber(ctx, dealershipID, key.StockNumber)
	}
	return nil, nil
}

// warnStockNumberClash logs when a VIN match moves onto a stock number another vehicle still holds.
// Later stock-number-only lookups for that number resolve to the oldest holder.
func (m *StockMapper) warnStockNumberClash(ctx context.Context, dealershipID int64, matched *inventory.Vehicle, stockNumber string) error {
	if stockNumber == "" || stockNumber == matched.ExternalStockNumber {
		return nil
	}
	holder, err := m.vehicles.FindByStockNumber(ctx, dealershipID, stockNumber)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != matched.ID {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "easycars stock number already assigned to another vehicle",
			slog.Int64("dealership.id", dealershipID),
			slog.String("stock_number", stockNumber),
			slog.Int64("vehicle.id", matched.ID),
			slog.Int64("holder.vehicle_id", holder.ID),
		)
	}
	return nil
}

func (m *StockMapper) storePayload(ctx context.Context, vehicleID int64, item *client.StockItem, at time.Time) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode stock payload: %w", err)
	}
	return m.payloads.Upsert(ctx, inventory.StockPayload{
		VehicleID:  vehicleID,
		Payload:    raw,
		APIVersion: client.APIVersion,
		SyncedAt:   at,
	})
}

func applyStockItem(v *inventory.Vehicle, item *client.StockItem, now time.Time) {
	key := inventory.Key{VIN: item.VIN, StockNumber: item.StockNumber}.Normalized()

	v.Make = orDefault(item.Make, unknownValue)
	v.Model = orDefault(item.Model, unknownValue)
	v.Year = item.YearGroup
	if !inventory.PlausibleYear(v.Year, now) {
		v.Year = now.Year() - 1
	}
	v.Mileage = item.Odometer
	if v.Mileage < 0 {
		v.Mileage = 0
	}
	v.Price = item.AdvertisedPrice
	if v.Price.IsNegative() {
		v.Price = decimal.Zero
	}
	v.Condition = mapCondition(item.NewUsed)
	v.Status = mapStockStatus(item.StockStatus)
	v.Title = stockTitle(v.Year, v.Make, v.Model, item.Badge)
	v.Description = orDefault(item.Comments, defaultDescription)
	v.BodyType = strings.TrimSpace(item.Body)
	v.Colour = strings.TrimSpace(item.Colour)
	v.Transmission = strings.TrimSpace(item.Transmission)
	v.FuelType = strings.TrimSpace(item.FuelType)
	v.ExternalStockNumber = key.StockNumber
	v.ExternalVIN = key.VIN
	v.ExternalYardCode = strings.TrimSpace(item.YardCode)
	v.DataSource = inventory.DataSourceExternal
	v.MarkSynced(now)
}

func mapCondition(raw string) inventory.Condition {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new", "demo":
		return inventory.ConditionNew
	default:
		return inventory.ConditionUsed
	}
}

func mapStockStatus(raw string) inventory.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sold":
		return inventory.StatusSold
	case "pending", "deposit":
		return inventory.StatusPending
	default:
		return inventory.StatusActive
	}
}

func stockTitle(year int, parts ...string) string {
	words := []string{fmt.Sprintf("%d", year)}
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return strings.Join(words, " ")
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
