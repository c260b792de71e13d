package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	"github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	"github.com/Apurer/dealership-sync/internal/shared/projection"
)

var (
	_ ports.VehicleRepository      = (*VehicleRepository)(nil)
	_ ports.StockPayloadRepository = (*StockPayloadRepository)(nil)
)

// VehicleRepository is an in-memory implementation used for demos/tests.
type VehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[int64]*storedVehicle
	nextID   int64
	now      func() time.Time

	creates int
	updates int
}

type storedVehicle struct {
	vehicle  *domain.Vehicle
	metadata projection.Metadata
}

type VehicleOption func(*VehicleRepository)

// WithClock overrides the time source used for metadata.
func WithClock(now func() time.Time) VehicleOption {
	return func(r *VehicleRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewVehicleRepository constructs an empty in-memory store.
func NewVehicleRepository(opts ...VehicleOption) *VehicleRepository {
	r := &VehicleRepository{vehicles: map[int64]*storedVehicle{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// GetByID fetches a vehicle if present.
func (r *VehicleRepository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Vehicle], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.vehicles[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return entry.projection(), nil
}

func (r *VehicleRepository) FindByVIN(_ context.Context, dealershipID int64, vin string) (*domain.Vehicle, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if vin == "" {
		return nil, nil
	}
	return r.findFirst(func(v *domain.Vehicle) bool {
		return v.DealershipID == dealershipID && strings.EqualFold(v.ExternalVIN, vin)
	}), nil
}

func (r *VehicleRepository) FindByStockNumber(_ context.Context, dealershipID int64, stockNumber string) (*domain.Vehicle, error) {
	stockNumber = strings.TrimSpace(stockNumber)
	if stockNumber == "" {
		return nil, nil
	}
	return r.findFirst(func(v *domain.Vehicle) bool {
		return v.DealershipID == dealershipID && v.ExternalStockNumber == stockNumber
	}), nil
}

// Create assigns an id and stores the vehicle.
func (r *VehicleRepository) Create(_ context.Context, vehicle *domain.Vehicle) (*projection.Projection[*domain.Vehicle], error) {
	if vehicle == nil {
		return nil, errors.New("cannot create nil vehicle")
	}
	if vehicle.DealershipID <= 0 {
		return nil, domain.ErrInvalidDealership
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := vehicle.Clone()
	clone.ID = r.nextID
	timestamp := r.now()
	entry := &storedVehicle{vehicle: clone, metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp}}
	r.vehicles[clone.ID] = entry
	r.creates++
	return entry.projection(), nil
}

// Update replaces an existing vehicle.
func (r *VehicleRepository) Update(_ context.Context, vehicle *domain.Vehicle) (*projection.Projection[*domain.Vehicle], error) {
	if vehicle == nil {
		return nil, errors.New("cannot update nil vehicle")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.vehicles[vehicle.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	entry.vehicle = vehicle.Clone()
	entry.metadata.UpdatedAt = r.now()
	r.updates++
	return entry.projection(), nil
}

// ListByDealership returns vehicles ordered by id.
func (r *VehicleRepository) ListByDealership(_ context.Context, dealershipID int64) ([]*projection.Projection[*domain.Vehicle], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*projection.Projection[*domain.Vehicle], 0)
	for _, entry := range r.vehicles {
		if entry.vehicle.DealershipID == dealershipID {
			list = append(list, entry.projection())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.ID < list[j].Entity.ID })
	return list, nil
}

// Counts reports how many creates and updates were performed.
func (r *VehicleRepository) Counts() (creates, updates int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.creates, r.updates
}

func (r *VehicleRepository) findFirst(match func(*domain.Vehicle) bool) *domain.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *storedVehicle
	for _, entry := range r.vehicles {
		if match(entry.vehicle) && (found == nil || entry.vehicle.ID < found.vehicle.ID) {
			found = entry
		}
	}
	if found == nil {
		return nil
	}
	return found.vehicle.Clone()
}

func (s *storedVehicle) projection() *projection.Projection[*domain.Vehicle] {
	return projection.New(s.vehicle.Clone(), s.metadata.CreatedAt, s.metadata.UpdatedAt)
}

// StockPayloadRepository keeps raw stock payloads in memory.
type StockPayloadRepository struct {
	mu       sync.RWMutex
	payloads map[int64]domain.StockPayload
	upserts  int
}

func NewStockPayloadRepository() *StockPayloadRepository {
	return &StockPayloadRepository{payloads: map[int64]domain.StockPayload{}}
}

func (r *StockPayloadRepository) Upsert(_ context.Context, payload domain.StockPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload.Payload = append([]byte(nil), payload.Payload...)
	r.payloads[payload.VehicleID] = payload
	r.upserts++
	return nil
}

func (r *StockPayloadRepository) Get(_ context.Context, vehicleID int64) (*domain.StockPayload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.payloads[vehicleID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	payload.Payload = append([]byte(nil), payload.Payload...)
	return &payload, nil
}

// Upserts reports how many upserts were performed.
func (r *StockPayloadRepository) Upserts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.upserts
}
