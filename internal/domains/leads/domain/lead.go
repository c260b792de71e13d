package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the local lifecycle of a customer enquiry.
type Status string

const (
	StatusReceived   Status = "received"
	StatusInProgress Status = "in-progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
	StatusDeleted    Status = "deleted"
)

// Rating is the temperature a salesperson assigned to the lead in EasyCars.
type Rating string

const (
	RatingHot  Rating = "hot"
	RatingWarm Rating = "warm"
	RatingCold Rating = "cold"
)

// VehicleInterestType is what the customer enquired about.
type VehicleInterestType string

const (
	InterestPurchase      VehicleInterestType = "purchase"
	InterestFinance       VehicleInterestType = "finance"
	InterestTradeIn       VehicleInterestType = "trade-in"
	InterestServiceRepair VehicleInterestType = "service-repair"
	InterestOther         VehicleInterestType = "other"
)

var (
	// ErrCannotUndelete guards the rule that automated flows never revive a deleted lead.
	ErrCannotUndelete = errors.New("lead is deleted and cannot change status")
	ErrUnknownStatus  = errors.New("unknown lead status")
)

// ParseStatus validates a status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusReceived:
		return StatusReceived, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusWon:
		return StatusWon, nil
	case StatusLost:
		return StatusLost, nil
	case StatusDeleted:
		return StatusDeleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

// Lead is a dealership-scoped customer enquiry, optionally linked to EasyCars.
type Lead struct {
	ID                     int64
	DealershipID           int64
	VehicleID              *int64
	Name                   string
	Email                  string
	Phone                  string
	Message                string
	Status                 Status
	ExternalLeadNumber     *string
	ExternalCustomerNumber *string
	Rating                 *Rating
	FinanceInterest        bool
	VehicleInterestType    *VehicleInterestType
	RawPayload             json.RawMessage
	LastSyncedToRemote     *time.Time
	LastSyncedFromRemote   *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasExternalLeadNumber reports whether the lead was already accepted by EasyCars.
func (l *Lead) HasExternalLeadNumber() bool {
	return l != nil && l.ExternalLeadNumber != nil && strings.TrimSpace(*l.ExternalLeadNumber) != ""
}

// ApplyRemoteStatus moves the lead to a status reported by the remote system.
// A deleted lead stays deleted.
func (l *Lead) ApplyRemoteStatus(status Status) error {
	if l.Status == StatusDeleted && status != StatusDeleted {
		return ErrCannotUndelete
	}
	l.Status = status
	return nil
}

// LinkExternal records the identifiers EasyCars assigned on create.
func (l *Lead) LinkExternal(leadNumber, customerNumber string, at time.Time) {
	if leadNumber != "" {
		number := leadNumber
		l.ExternalLeadNumber = &number
	}
	if customerNumber != "" {
		customer := customerNumber
		l.ExternalCustomerNumber = &customer
	}
	stamp := at
	l.LastSyncedToRemote = &stamp
}

// Clone returns a deep copy.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	clone := *l
	clone.VehicleID = cloneInt64(l.VehicleID)
	clone.ExternalLeadNumber = cloneString(l.ExternalLeadNumber)
	clone.ExternalCustomerNumber = cloneString(l.ExternalCustomerNumber)
	if l.Rating != nil {
		rating := *l.Rating
		clone.Rating = &rating
	}
	if l.VehicleInterestType != nil {
		interest := *l.VehicleInterestType
		clone.VehicleInterestType = &interest
	}
	if len(l.RawPayload) > 0 {
		clone.RawPayload = append(json.RawMessage{}, l.RawPayload...)
	}
	clone.LastSyncedToRemote = cloneTime(l.LastSyncedToRemote)
	clone.LastSyncedFromRemote = cloneTime(l.LastSyncedFromRemote)
	return &clone
}

// StatusUpdate is a pending status change written in a single batch.
type StatusUpdate struct {
	LeadID   int64
	Status   Status
	SyncedAt time.Time
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
