package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	"github.com/Apurer/dealership-sync/internal/domains/leads/ports"
)

var _ ports.ConflictRepository = (*ConflictStore)(nil)

// ConflictStore keeps lead status conflicts in memory.
type ConflictStore struct {
	mu        sync.RWMutex
	conflicts map[string]*domain.StatusConflict
	order     []string
}

func NewConflictStore() *ConflictStore {
	return &ConflictStore{conflicts: map[string]*domain.StatusConflict{}}
}

func (s *ConflictStore) HasUnresolved(_ context.Context, leadID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conflict := range s.conflicts {
		if conflict.LeadID == leadID && !conflict.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (s *ConflictStore) Create(_ context.Context, conflict *domain.StatusConflict) error {
	if conflict == nil || conflict.ID == "" {
		return errors.New("conflict id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.conflicts[conflict.ID]; exists {
		return errors.New("conflict already exists")
	}
	s.conflicts[conflict.ID] = cloneConflict(conflict)
	s.order = append(s.order, conflict.ID)
	return nil
}

func (s *ConflictStore) GetByID(_ context.Context, id string) (*domain.StatusConflict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conflict, ok := s.conflicts[id]
	if !ok {
		return nil, ports.ErrConflictNotFound
	}
	return cloneConflict(conflict), nil
}

// ListUnresolved returns open conflicts oldest first.
func (s *ConflictStore) ListUnresolved(_ context.Context, dealershipID int64) ([]*domain.StatusConflict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*domain.StatusConflict
	for _, id := range s.order {
		conflict := s.conflicts[id]
		if conflict.DealershipID == dealershipID && !conflict.Resolved {
			list = append(list, cloneConflict(conflict))
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DetectedAt.Before(list[j].DetectedAt) })
	return list, nil
}

func (s *ConflictStore) MarkResolved(_ context.Context, conflict *domain.StatusConflict) error {
	if conflict == nil {
		return errors.New("conflict is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conflicts[conflict.ID]; !ok {
		return ports.ErrConflictNotFound
	}
	s.conflicts[conflict.ID] = cloneConflict(conflict)
	return nil
}

// Count returns the total number of conflicts, resolved or not.
func (s *ConflictStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conflicts)
}

func cloneConflict(c *domain.StatusConflict) *domain.StatusConflict {
	clone := *c
	if c.ResolvedAt != nil {
		at := *c.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}
