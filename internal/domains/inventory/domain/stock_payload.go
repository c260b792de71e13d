package domain

import (
	"encoding/json"
	"time"
)

// StockPayload keeps the raw remote stock record that produced a vehicle.
type StockPayload struct {
	VehicleID  int64
	Payload    json.RawMessage
	APIVersion string
	SyncedAt   time.Time
}
