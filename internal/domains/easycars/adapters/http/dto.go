package http

import (
	"time"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// SyncResult is the JSON view of one sync run.
type SyncResult struct {
	DealershipID     int64    `json:"dealershipId"`
	SyncType         string   `json:"syncType"`
	Status           string   `json:"status"`
	ItemsProcessed   int      `json:"itemsProcessed"`
	ItemsSucceeded   int      `json:"itemsSucceeded"`
	ItemsFailed      int      `json:"itemsFailed"`
	Errors           []string `json:"errors"`
	DurationMS       int64    `json:"durationMs"`
	Retryable        bool     `json:"retryable,omitempty"`
	VehiclesCreated  int      `json:"vehiclesCreated,omitempty"`
	VehiclesUpdated  int      `json:"vehiclesUpdated,omitempty"`
	VehiclesSkipped  int      `json:"vehiclesSkipped,omitempty"`
	ImagesImported   int      `json:"imagesImported,omitempty"`
	ImagesFailed     int      `json:"imagesFailed,omitempty"`
	StatusesUpdated  int      `json:"statusesUpdated,omitempty"`
	ConflictsCreated int      `json:"conflictsCreated,omitempty"`
	LeadNumber       string   `json:"leadNumber,omitempty"`
}

type DealershipSync struct {
	WorkflowID string      `json:"workflowId,omitempty"`
	Stock      *SyncResult `json:"stock"`
	LeadStatus *SyncResult `json:"leadStatus"`
}

type SyncLog struct {
	ID             string    `json:"id"`
	SyncType       string    `json:"syncType"`
	Status         string    `json:"status"`
	ItemsProcessed int       `json:"itemsProcessed"`
	ItemsSucceeded int       `json:"itemsSucceeded"`
	ItemsFailed    int       `json:"itemsFailed"`
	Errors         []string  `json:"errors"`
	DurationMS     int64     `json:"durationMs"`
	SyncedAt       time.Time `json:"syncedAt"`
}

type Conflict struct {
	ID           string     `json:"id"`
	LeadID       int64      `json:"leadId"`
	LocalStatus  string     `json:"localStatus"`
	RemoteStatus string     `json:"remoteStatus"`
	Reason       string     `json:"reason"`
	DetectedAt   time.Time  `json:"detectedAt"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
}

type ImportedLead struct {
	Lead   *Lead       `json:"lead,omitempty"`
	Result *SyncResult `json:"result"`
}

type Lead struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	Status             string  `json:"status"`
	ExternalLeadNumber *string `json:"externalLeadNumber,omitempty"`
}

type resolveConflictRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

func fromResult(r *domain.SyncResult) *SyncResult {
	if r == nil {
		return nil
	}
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return &SyncResult{
		DealershipID:     r.DealershipID,
		SyncType:         string(r.SyncType),
		Status:           string(r.Status),
		ItemsProcessed:   r.ItemsProcessed,
		ItemsSucceeded:   r.ItemsSucceeded,
		ItemsFailed:      r.ItemsFailed,
		Errors:           errs,
		DurationMS:       r.Duration.Milliseconds(),
		Retryable:        r.Retryable,
		VehiclesCreated:  r.VehiclesCreated,
		VehiclesUpdated:  r.VehiclesUpdated,
		VehiclesSkipped:  r.VehiclesSkipped,
		ImagesImported:   r.ImagesImported,
		ImagesFailed:     r.ImagesFailed,
		StatusesUpdated:  r.StatusesUpdated,
		ConflictsCreated: r.ConflictsCreated,
		LeadNumber:       r.LeadNumber,
	}
}

func fromDealershipSync(r *ports.DealershipSyncResult) DealershipSync {
	return DealershipSync{WorkflowID: r.WorkflowID, Stock: fromResult(r.Stock), LeadStatus: fromResult(r.LeadStatus)}
}

func fromSyncLogs(logs []domain.SyncLog) []SyncLog {
	out := make([]SyncLog, 0, len(logs))
	for _, l := range logs {
		errs := l.Errors
		if errs == nil {
			errs = []string{}
		}
		out = append(out, SyncLog{
			ID:             l.ID,
			SyncType:       string(l.SyncType),
			Status:         string(l.Status),
			ItemsProcessed: l.ItemsProcessed,
			ItemsSucceeded: l.ItemsSucceeded,
			ItemsFailed:    l.ItemsFailed,
			Errors:         errs,
			DurationMS:     l.Duration.Milliseconds(),
			SyncedAt:       l.SyncedAt,
		})
	}
	return out
}

func fromConflict(c *leads.StatusConflict) Conflict {
	return Conflict{
		ID:           c.ID,
		LeadID:       c.LeadID,
		LocalStatus:  string(c.LocalStatus),
		RemoteStatus: string(c.RemoteStatus),
		Reason:       string(c.Reason),
		DetectedAt:   c.DetectedAt,
		Resolved:     c.Resolved,
		ResolvedAt:   c.ResolvedAt,
		Resolution:   string(c.Resolution),
	}
}

func fromConflicts(list []*leads.StatusConflict) []Conflict {
	out := make([]Conflict, 0, len(list))
	for _, c := range list {
		out = append(out, fromConflict(c))
	}
	return out
}

func fromLead(l *leads.Lead) *Lead {
	if l == nil {
		return nil
	}
	return &Lead{
		ID:                 l.ID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		Status:             string(l.Status),
		ExternalLeadNumber: l.ExternalLeadNumber,
	}
}
