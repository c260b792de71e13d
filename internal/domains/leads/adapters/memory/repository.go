package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	"github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory lead store used for demos/tests.
type Repository struct {
	mu     sync.RWMutex
	leads  map[int64]*domain.Lead
	nextID int64
	now    func() time.Time

	batchCalls int
}

type Option func(*Repository)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository constructs an empty in-memory store.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{leads: map[int64]*domain.Lead{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return lead.Clone(), nil
}

func (r *Repository) GetByExternalLeadNumber(_ context.Context, dealershipID int64, leadNumber string) (*domain.Lead, error) {
	leadNumber = strings.TrimSpace(leadNumber)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.sortedIDs() {
		lead := r.leads[id]
		if lead.DealershipID == dealershipID && lead.HasExternalLeadNumber() && *lead.ExternalLeadNumber == leadNumber {
			return lead.Clone(), nil
		}
	}
	return nil, nil
}

// Save inserts a lead when ID is zero and replaces it otherwise.
func (r *Repository) Save(_ context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if lead == nil {
		return nil, errors.New("cannot save nil lead")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := lead.Clone()
	timestamp := r.now()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = timestamp
		}
	} else {
		existing, ok := r.leads[clone.ID]
		if !ok {
			if clone.ID <= r.nextID {
				return nil, ports.ErrNotFound
			}
			r.nextID = clone.ID
		} else {
			clone.CreatedAt = existing.CreatedAt
		}
	}
	clone.UpdatedAt = timestamp
	r.leads[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) ListWithExternalLeadNumber(_ context.Context, dealershipID int64) ([]*domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Lead
	for _, id := range r.sortedIDs() {
		lead := r.leads[id]
		if lead.DealershipID == dealershipID && lead.HasExternalLeadNumber() {
			list = append(list, lead.Clone())
		}
	}
	return list, nil
}

// UpdateStatuses applies every update or none.
func (r *Repository) UpdateStatuses(_ context.Context, updates []domain.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	for _, update := range updates {
		if _, ok := r.leads[update.LeadID]; !ok {
			return ports.ErrNotFound
		}
	}
	timestamp := r.now()
	for _, update := range updates {
		lead := r.leads[update.LeadID]
		lead.Status = update.Status
		synced := update.SyncedAt
		lead.LastSyncedFromRemote = &synced
		lead.UpdatedAt = timestamp
	}
	return nil
}

// BatchCalls reports how many times UpdateStatuses ran.
func (r *Repository) BatchCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.batchCalls
}

func (r *Repository) sortedIDs() []int64 {
	ids := make([]int64, 0, len(r.leads))
	for id := range r.leads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
