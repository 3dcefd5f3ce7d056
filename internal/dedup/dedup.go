// Package dedup suppresses repeated emission of the same logical event and
// correlates near-simultaneous signals. The game client is noisy: it can
// repeat a collection log line within a few seconds, and a pet message
// carries no structured hint of which pet dropped — the collection log line
// for the same item, when one arrives close by, is the only reliable name
// source.
package dedup

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/model"
)

// Config carries the dedup window policy values. The defaults are the
// observed production tuning; tests override them.
type Config struct {
	// CollectionLogWindow is the span within which a repeated collection
	// log entry for the same item is treated as a duplicate.
	CollectionLogWindow time.Duration

	// PetCorrelationWindow is how far back a collection log candidate may
	// be used as the pet name fallback.
	PetCorrelationWindow time.Duration

	// EvictionAge is the age past which seen entries are lazily evicted.
	EvictionAge time.Duration
}

func DefaultConfig() Config {
	return Config{
		CollectionLogWindow:  5 * time.Second,
		PetCorrelationWindow: 3 * time.Second,
		EvictionAge:          30 * time.Second,
	}
}

// Filter owns the process-wide dedup state. It is the only concurrently
// mutated shared resource in the pipeline; all access is safe for multiple
// in-flight candidates.
type Filter struct {
	cfg        Config
	companions host.CompanionResolver

	// seen maps lower-cased item name -> last-seen time
	seen *cache.Cache

	// mu guards the most-recent collection log candidate, consumed at most
	// once by pet name resolution
	mu         sync.Mutex
	lastName   string
	lastSeenAt time.Time

	clock func() time.Time
}

func New(companions host.CompanionResolver) *Filter {
	return NewWithConfig(DefaultConfig(), companions)
}

func NewWithConfig(cfg Config, companions host.CompanionResolver) *Filter {
	return &Filter{
		cfg:        cfg,
		companions: companions,
		seen:       cache.New(cache.NoExpiration, 0),
		clock:      time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (f *Filter) WithClock(clock func() time.Time) *Filter {
	f.clock = clock
	return f
}

// AdmitCollectionLog records a collection log candidate and reports whether
// it should proceed. A repeat of the same item name within the dedup window
// is suppressed. Admitted names also become the most-recent candidate used
// as the pet name fallback.
func (f *Filter) AdmitCollectionLog(itemName string) bool {
	key := strings.ToLower(itemName)
	now := f.clock()

	if prev, ok := f.seen.Get(key); ok {
		if elapsed := now.Sub(prev.(time.Time)); elapsed < f.cfg.CollectionLogWindow {
			log.Debug().
				Str("item", itemName).
				Dur("elapsed", elapsed).
				Msg("suppressing duplicate collection log entry")
			return false
		}
	}
	f.seen.SetDefault(key, now)
	f.evictStale(now)

	f.mu.Lock()
	f.lastName = itemName
	f.lastSeenAt = now
	f.mu.Unlock()

	return true
}

// ResolvePetName resolves a display name for a pet candidate, in priority
// order: the current follower (unless the drop was a duplicate and no
// follower spawned), then a collection log candidate recorded within the
// correlation window, consumed exactly once. Returns "" when unresolved;
// submission proceeds with a generic label rather than failing.
func (f *Filter) ResolvePetName(drop *model.CandidateDrop) string {
	if !drop.PetDuplicate {
		if name, ok := f.companions.FollowerName(); ok && name != "" {
			return name
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastName != "" && f.clock().Sub(f.lastSeenAt) < f.cfg.PetCorrelationWindow {
		name := f.lastName
		f.lastName = ""
		return name
	}

	return ""
}

// Reset clears all dedup state. Used on plugin activation boundaries and in
// tests.
func (f *Filter) Reset() {
	f.seen.Flush()
	f.mu.Lock()
	f.lastName = ""
	f.lastSeenAt = time.Time{}
	f.mu.Unlock()
}

// evictStale is the amortized cleanup: invoked on each admit rather than by
// a timer.
func (f *Filter) evictStale(now time.Time) {
	for key, item := range f.seen.Items() {
		if at, ok := item.Object.(time.Time); ok && now.Sub(at) > f.cfg.EvictionAge {
			f.seen.Delete(key)
		}
	}
}
