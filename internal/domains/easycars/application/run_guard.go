package application

import (
	"sync"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

type runKey struct {
	dealershipID int64
	syncType     domain.SyncType
}

// RunGuard keeps at most one in-process run per dealership and sync type.
type RunGuard struct {
	mu     sync.Mutex
	active map[runKey]struct{}
}

// NewRunGuard returns an empty guard.
func NewRunGuard() *RunGuard {
	return &RunGuard{active: make(map[runKey]struct{})}
}

// TryAcquire returns ok=false when a run for the same key is active.
// A nil guard always grants the run.
func (g *RunGuard) TryAcquire(dealershipID int64, syncType domain.SyncType) (release func(), ok bool) {
	if g == nil {
		return func() {}, true
	}
	key := runKey{dealershipID: dealershipID, syncType: syncType}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, true
}
