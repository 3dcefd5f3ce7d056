package submit

import (
	"sync"

	"osrsloottracker.dev/plugin-core/internal/model"
)

// RecentDrops is the bounded UI-facing projection of dispatched drops. It
// is owned by the orchestrator and mutated only after a successful
// dispatch; readers get either the pre- or post-update state, never a torn
// intermediate.
type RecentDrops struct {
	mu      sync.RWMutex
	limit   int
	records []model.RecentDropRecord
}

func NewRecentDrops(limit int) *RecentDrops {
	return &RecentDrops{
		limit: limit,
	}
}

// Append adds records, evicting the oldest beyond the cap.
func (r *RecentDrops) Append(records ...model.RecentDropRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, records...)
	if overflow := len(r.records) - r.limit; overflow > 0 {
		r.records = r.records[overflow:]
	}
}

// List returns a copy, newest last.
func (r *RecentDrops) List() []model.RecentDropRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.RecentDropRecord, len(r.records))
	copy(out, r.records)
	return out
}
