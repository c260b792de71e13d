package domain

import (
	"time"
)

// SyncType identifies which orchestrator produced a result.
type SyncType string

const (
	SyncTypeStock      SyncType = "Stock"
	SyncTypeLead       SyncType = "Lead"
	SyncTypeLeadStatus SyncType = "LeadStatus"
)

// SyncStatus is the aggregate outcome of one run.
type SyncStatus string

const (
	SyncStatusSuccess        SyncStatus = "Success"
	SyncStatusPartialSuccess SyncStatus = "PartialSuccess"
	SyncStatusFailed         SyncStatus = "Failed"
)

// DetermineStatus folds per-item counts into a run status.
// Zero items is a success; zero successes with at least one failure is a failure.
func DetermineStatus(succeeded, failed int) SyncStatus {
	switch {
	case failed == 0:
		return SyncStatusSuccess
	case succeeded == 0:
		return SyncStatusFailed
	default:
		return SyncStatusPartialSuccess
	}
}

// SyncResult is what every orchestrator call returns.
type SyncResult struct {
	DealershipID   int64
	SyncType       SyncType
	Status         SyncStatus
	ItemsProcessed int
	ItemsSucceeded int
	ItemsFailed    int
	Errors         []string
	Duration       time.Duration
	// Retryable is set when the failure came from a temporary remote condition.
	Retryable bool

	VehiclesCreated  int
	VehiclesUpdated  int
	VehiclesSkipped  int
	ImagesImported   int
	ImagesFailed     int
	StatusesUpdated  int
	ConflictsCreated int
	LeadNumber       string
}

// NewSyncResult starts an empty result for a run.
func NewSyncResult(dealershipID int64, syncType SyncType) *SyncResult {
	return &SyncResult{DealershipID: dealershipID, SyncType: syncType, Status: SyncStatusSuccess}
}

// RecordSuccess counts a processed item that succeeded.
func (r *SyncResult) RecordSuccess() {
	r.ItemsProcessed++
	r.ItemsSucceeded++
}

// RecordFailure counts a processed item that failed.
func (r *SyncResult) RecordFailure(message string) {
	r.ItemsProcessed++
	r.ItemsFailed++
	r.Errors = append(r.Errors, message)
}

// Fail marks the whole run as failed without touching item counters.
func (r *SyncResult) Fail(message string) {
	r.Status = SyncStatusFailed
	r.Errors = append(r.Errors, message)
}

// Finalize derives the status from the counters unless the run already failed.
func (r *SyncResult) Finalize(elapsed time.Duration) {
	r.Duration = elapsed
	if r.Status == SyncStatusFailed {
		return
	}
	r.Status = DetermineStatus(r.ItemsSucceeded, r.ItemsFailed)
}

// SyncLog is the immutable audit record of one run.
type SyncLog struct {
	ID             string
	DealershipID   int64
	SyncType       SyncType
	Status         SyncStatus
	ItemsProcessed int
	ItemsSucceeded int
	ItemsFailed    int
	Errors         []string
	Duration       time.Duration
	SyncedAt       time.Time
}

// NewSyncLog snapshots a finished result.
func NewSyncLog(id string, result *SyncResult, at time.Time) SyncLog {
	log := SyncLog{
		ID:             id,
		DealershipID:   result.DealershipID,
		SyncType:       result.SyncType,
		Status:         result.Status,
		ItemsProcessed: result.ItemsProcessed,
		ItemsSucceeded: result.ItemsSucceeded,
		ItemsFailed:    result.ItemsFailed,
		Duration:       result.Duration,
		SyncedAt:       at,
	}
	if len(result.Errors) > 0 {
		log.Errors = append([]string{}, result.Errors...)
	}
	return log
}
