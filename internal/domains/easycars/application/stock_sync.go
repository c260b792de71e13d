package application

import (
	"context"
	"fmt"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

// SyncStock pulls the dealership's advertised stock and reconciles it with local inventory.
func (s *Service) SyncStock(ctx context.Context, dealershipID int64) *domain.SyncResult {
	started := s.now()
	result := domain.NewSyncResult(dealershipID, domain.SyncTypeStock)
	defer s.finish(ctx, result, started)

	release, ok := s.begin(result)
	defer release()
	if !ok {
		return result
	}

	creds, err := s.credentials.Load(ctx, dealershipID)
	if err != nil {
		s.failCredentials(result, err)
		return result
	}
	items, err := s.api.GetAdvertisementStocks(ctx, creds)
	if err != nil {
		s.failRemote(result, "fetching stock", err)
		return result
	}

	for i := range items {
		if s.cancelled(ctx, result) {
			return result
		}
		item := &items[i]
		mapped, err := s.stock.Map(ctx, item, dealershipID)
		if err != nil {
			result.RecordFailure(fmt.Sprintf("stock %s: %v", item.StockNumber, err))
			continue
		}
		result.RecordSuccess()
		result.ImagesImported += mapped.ImagesImported
		result.ImagesFailed += mapped.ImagesFailed
		switch mapped.Outcome {
		case StockCreated:
			result.VehiclesCreated++
		case StockUpdated:
			result.VehiclesUpdated++
		case StockSkipped:
			result.VehiclesSkipped++
		}
	}
	return result
}
