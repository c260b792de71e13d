package ports

import (
	"context"
	"errors"

	"github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	"github.com/Apurer/dealership-sync/internal/shared/projection"
)

var ErrNotFound = errors.New("vehicle not found")

// VehicleRepository is the persistence port for dealership inventory.
// Find* lookups return (nil, nil) when nothing matches.
type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Vehicle], error)
	FindByVIN(ctx context.Context, dealershipID int64, vin string) (*domain.Vehicle, error)
	FindByStockNumber(ctx context.Context, dealershipID int64, stockNumber string) (*domain.Vehicle, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) (*projection.Projection[*domain.Vehicle], error)
	Update(ctx context.Context, vehicle *domain.Vehicle) (*projection.Projection[*domain.Vehicle], error)
	ListByDealership(ctx context.Context, dealershipID int64) ([]*projection.Projection[*domain.Vehicle], error)
}

// StockPayloadRepository stores the raw remote record per vehicle.
type StockPayloadRepository interface {
	Upsert(ctx context.Context, payload domain.StockPayload) error
	Get(ctx context.Context, vehicleID int64) (*domain.StockPayload, error)
}
