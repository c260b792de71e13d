//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	"github.com/Apurer/dealership-sync/internal/domains/inventory/ports"
	"github.com/Apurer/dealership-sync/internal/platform/migrations"
	platformpostgres "github.com/Apurer/dealership-sync/internal/platform/postgres"
)

func setupInventoryPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("dealership_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newExternalVehicle(dealershipID int64, vin, stock string) *domain.Vehicle {
	return &domain.Vehicle{
		DealershipID:        dealershipID,
		Make:                "Toyota",
		Model:               "Corolla",
		Year:                2021,
		Price:               decimal.RequireFromString("24990.00"),
		Mileage:             12000,
		Condition:           domain.ConditionUsed,
		Status:              domain.StatusActive,
		Title:               "2021 Toyota Corolla",
		ImageURLs:           []string{"https://cdn/1.jpg"},
		ExternalStockNumber: stock,
		ExternalVIN:         vin,
		DataSource:          domain.DataSourceExternal,
	}
}

func TestVehicleRepository_CreateAndFind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewVehicleRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExternalVehicle(7, "JTDBR32E720012345", "S-100"))
	require.NoError(t, err)
	require.NotZero(t, created.Entity.ID)

	byVIN, err := repo.FindByVIN(ctx, 7, "jtdbr32e720012345")
	require.NoError(t, err)
	require.NotNil(t, byVIN)
	assert.Equal(t, created.Entity.ID, byVIN.ID)
	assert.True(t, decimal.RequireFromString("24990").Equal(byVIN.Price))
	assert.Equal(t, []string{"https://cdn/1.jpg"}, byVIN.ImageURLs)

	byStock, err := repo.FindByStockNumber(ctx, 7, "S-100")
	require.NoError(t, err)
	require.NotNil(t, byStock)

	other, err := repo.FindByStockNumber(ctx, 8, "S-100")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestVehicleRepository_Update(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewVehicleRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newExternalVehicle(7, "", "S-200"))
	require.NoError(t, err)

	vehicle := created.Entity
	vehicle.Status = domain.StatusSold
	vehicle.ReplaceImages([]string{"https://cdn/a.jpg", "https://cdn/b.jpg"})
	updated, err := repo.Update(ctx, vehicle)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, updated.Entity.Status)
	assert.Len(t, updated.Entity.ImageURLs, 2)

	vehicle.ID = 9999
	_, err = repo.Update(ctx, vehicle)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	list, err := repo.ListByDealership(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStockPayloadRepository_UpsertReplaces(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	vehicles := NewVehicleRepository(db)
	payloads := NewStockPayloadRepository(db)
	ctx := context.Background()

	created, err := vehicles.Create(ctx, newExternalVehicle(7, "", "S-300"))
	require.NoError(t, err)
	id := created.Entity.ID

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, payloads.Upsert(ctx, domain.StockPayload{VehicleID: id, Payload: json.RawMessage(`{"StockNumber":"S-300"}`), APIVersion: "v1", SyncedAt: now}))
	require.NoError(t, payloads.Upsert(ctx, domain.StockPayload{VehicleID: id, Payload: json.RawMessage(`{"StockNumber":"S-300","Odometer":5}`), APIVersion: "v1", SyncedAt: now.Add(time.Minute)}))

	stored, err := payloads.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"StockNumber":"S-300","Odometer":5}`, string(stored.Payload))
}
