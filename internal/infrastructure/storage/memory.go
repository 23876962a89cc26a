package storage

import (
	"context"
	"sync"

	"github.com/vitalcare/patient-registry/internal/domain/patient"
)

// MemoryGateway keeps the record set in process memory. Used in tests and
// for ephemeral deployments.
type MemoryGateway struct {
	mu  sync.RWMutex
	set patient.RecordSet

	// SaveErr, when set, is returned by every Save call. Test hook.
	SaveErr error
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{set: patient.RecordSet{}}
}

// Load returns a copy of the stored set so callers cannot mutate state
// without going through Save.
func (g *MemoryGateway) Load(ctx context.Context) (patient.RecordSet, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.set.Clone(), nil
}

// Save replaces the stored set with a copy of the given one.
func (g *MemoryGateway) Save(ctx context.Context, set patient.RecordSet) error {
	if g.SaveErr != nil {
		return g.SaveErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.set = set.Clone()
	return nil
}
