package submit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"osrsloottracker.dev/plugin-core/internal/transport"
)

// StatsRefresher keeps the panel's aggregate stats current. Concurrent
// refresh requests for the same player collapse into one backend call.
type StatsRefresher struct {
	client transport.Client
	group  singleflight.Group

	mu     sync.RWMutex
	latest *transport.UserStats
}

func NewStatsRefresher(client transport.Client) *StatsRefresher {
	return &StatsRefresher{
		client: client,
	}
}

// Refresh fetches stats for the player, deduplicating concurrent calls.
func (s *StatsRefresher) Refresh(ctx context.Context, rsn string) (*transport.UserStats, error) {
	v, err, _ := s.group.Do("stats:"+rsn, func() (interface{}, error) {
		return s.client.UserStats(ctx, rsn)
	})
	if err != nil {
		return nil, err
	}

	stats := v.(*transport.UserStats)
	s.mu.Lock()
	s.latest = stats
	s.mu.Unlock()
	return stats, nil
}

// refreshTimeout bounds the detached background fetch.
const refreshTimeout = 30 * time.Second

// RequestRefresh triggers a refresh without blocking the caller; failures
// are logged, not surfaced, since stale stats are harmless. The fetch runs
// on its own context: the triggering signal's context is canceled right
// after dispatch and must not kill the refresh.
func (s *StatsRefresher) RequestRefresh(rsn string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if _, err := s.Refresh(ctx, rsn); err != nil {
			log.Warn().Err(err).Str("rsn", rsn).Msg("stats refresh failed")
		}
	}()
}

// Latest is the most recent successfully fetched stats, or nil.
func (s *StatsRefresher) Latest() *transport.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
