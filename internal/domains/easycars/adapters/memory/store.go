package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

var (
	_ ports.CredentialRepository = (*CredentialStore)(nil)
	_ ports.CredentialWriter     = (*CredentialStore)(nil)
	_ ports.SyncLogRepository    = (*SyncLogStore)(nil)
)

// CredentialStore holds encrypted credentials keyed by dealership.
type CredentialStore struct {
	mu     sync.RWMutex
	creds  map[int64]domain.Credential
	nextID int64
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: map[int64]domain.Credential{}}
}

// Put stores or replaces the credential for its dealership.
func (s *CredentialStore) Put(cred domain.Credential) domain.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.creds[cred.DealershipID]; ok && cred.ID == 0 {
		cred.ID = existing.ID
	}
	if cred.ID == 0 {
		s.nextID++
		cred.ID = s.nextID
	}
	s.creds[cred.DealershipID] = cred
	return cred
}

func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) (*domain.Credential, error) {
	cred.Environment = domain.ParseEnvironment(string(cred.Environment))
	saved := s.Put(cred)
	return &saved, nil
}

func (s *CredentialStore) GetByDealership(_ context.Context, dealershipID int64) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[dealershipID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

// SyncLogStore is an append-only in-memory audit trail.
type SyncLogStore struct {
	mu   sync.RWMutex
	logs []domain.SyncLog
	err  error
}

func NewSyncLogStore() *SyncLogStore {
	return &SyncLogStore{}
}

// FailWith makes every subsequent Save return err.
func (s *SyncLogStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *SyncLogStore) Save(_ context.Context, log domain.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	log.Errors = append([]string(nil), log.Errors...)
	s.logs = append(s.logs, log)
	return nil
}

// ListByDealership returns the newest logs first.
func (s *SyncLogStore) ListByDealership(_ context.Context, dealershipID int64, limit int) ([]domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []domain.SyncLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].DealershipID == dealershipID {
			list = append(list, s.logs[i])
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SyncedAt.After(list[j].SyncedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// All returns every stored log in write order.
func (s *SyncLogStore) All() []domain.SyncLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SyncLog(nil), s.logs...)
}
