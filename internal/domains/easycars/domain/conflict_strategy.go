package domain

import (
	"strings"

	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// ConflictStrategy decides how remote lead status changes are applied locally.
type ConflictStrategy string

const (
	StrategyRemoteWins   ConflictStrategy = "RemoteWins"
	StrategyLocalWins    ConflictStrategy = "LocalWins"
	StrategyManualReview ConflictStrategy = "ManualReview"
)

// ParseConflictStrategy falls back to RemoteWins; ok is false when raw was not recognized.
func ParseConflictStrategy(raw string) (ConflictStrategy, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "remotewins":
		return StrategyRemoteWins, true
	case "localwins":
		return StrategyLocalWins, true
	case "manualreview":
		return StrategyManualReview, true
	default:
		return StrategyRemoteWins, false
	}
}

// Decision is the action the inbound sync takes for one lead.
type Decision int

const (
	// DecisionNoop means the statuses already agree.
	DecisionNoop Decision = iota
	// DecisionApplyRemote overwrites the local status.
	DecisionApplyRemote
	// DecisionKeepLocal leaves the divergence in place without recording it.
	DecisionKeepLocal
	// DecisionRecordConflict leaves local untouched and opens a review item.
	DecisionRecordConflict
	// DecisionBlockUndelete refuses to move a deleted lead and opens a review item.
	DecisionBlockUndelete
)

func (d Decision) String() string {
	switch d {
	case DecisionNoop:
		return "noop"
	case DecisionApplyRemote:
		return "apply_remote"
	case DecisionKeepLocal:
		return "keep_local"
	case DecisionRecordConflict:
		return "record_conflict"
	case DecisionBlockUndelete:
		return "block_undelete"
	default:
		return "unknown"
	}
}

// ResolveStatusConflict picks the action for a local/remote pair.
// The deleted guard is evaluated before the strategy.
func ResolveStatusConflict(strategy ConflictStrategy, local, remote leads.Status) Decision {
	if local == leads.StatusDeleted && remote != leads.StatusDeleted {
		return DecisionBlockUndelete
	}
	if local == remote {
		return DecisionNoop
	}
	switch strategy {
	case StrategyLocalWins:
		return DecisionKeepLocal
	case StrategyManualReview:
		return DecisionRecordConflict
	case StrategyRemoteWins:
		return DecisionApplyRemote
	default:
		return DecisionApplyRemote
	}
}
