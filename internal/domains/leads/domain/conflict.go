package domain

import "time"

// ConflictReason explains why a status disagreement could not be applied automatically.
type ConflictReason string

const (
	// ConflictReasonManualReview is raised by the manual-review strategy.
	ConflictReasonManualReview ConflictReason = "manual_review"
	// ConflictReasonDeletedGuard is raised when the remote tries to move a deleted lead.
	ConflictReasonDeletedGuard ConflictReason = "deleted_guard"
)

// Resolution is the staff decision that closes a conflict.
type Resolution string

const (
	ResolutionAcceptLocal  Resolution = "accept_local"
	ResolutionAcceptRemote Resolution = "accept_remote"
)

// StatusConflict records a local/remote status disagreement awaiting review.
type StatusConflict struct {
	ID           string
	LeadID       int64
	DealershipID int64
	LocalStatus  Status
	RemoteStatus Status
	Reason       ConflictReason
	DetectedAt   time.Time
	Resolved     bool
	ResolvedAt   *time.Time
	Resolution   Resolution
}

// NewStatusConflict builds an open conflict.
func NewStatusConflict(id string, lead *Lead, remote Status, reason ConflictReason, at time.Time) *StatusConflict {
	return &StatusConflict{
		ID:           id,
		LeadID:       lead.ID,
		DealershipID: lead.DealershipID,
		LocalStatus:  lead.Status,
		RemoteStatus: remote,
		Reason:       reason,
		DetectedAt:   at,
	}
}

// Resolve closes the conflict.
func (c *StatusConflict) Resolve(resolution Resolution, at time.Time) {
	stamp := at
	c.Resolved = true
	c.ResolvedAt = &stamp
	c.Resolution = resolution
}
