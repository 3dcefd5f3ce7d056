// Package settings owns the plugin settings document persisted through the
// host config store. Reads produce an immutable snapshot; writes go through
// single-key updates so a corrupted field never takes the rest of the
// document down with it.
package settings

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"osrsloottracker.dev/plugin-core/internal/host"
	trackererrors "osrsloottracker.dev/plugin-core/internal/pkg/errors"
)

// Settings is one copy-on-read snapshot of the persisted plugin settings.
type Settings struct {
	TrackLoot          bool
	TrackCollectionLog bool
	TrackPets          bool
	CaptureScreenshots bool

	// MinLootValue is the legacy global value filter from older plugin
	// revisions. Per-channel thresholds in DropDestinations supersede it;
	// it is persisted for older panel builds that still render it.
	MinLootValue int

	// SelectedServerID and SelectedEventID are the legacy single-server
	// destination, consulted only when DropDestinations is absent or empty.
	SelectedServerID string
	SelectedEventID  string

	// DropDestinations is the raw destination document; see package
	// destination for its two accepted wire shapes.
	DropDestinations string

	AuthToken       string
	DiscordID       string
	DiscordUsername string
}

type Service struct {
	store host.ConfigStore
	key   string

	// mu serializes read-modify-write cycles against the store; snapshot
	// reads take the read lock only.
	mu sync.RWMutex
}

func New(store host.ConfigStore, key string) *Service {
	return &Service{
		store: store,
		key:   key,
	}
}

// Snapshot reads the current settings document. Missing keys fall back to
// defaults; an unreadable store yields the defaults rather than an error so
// event processing keeps running.
func (s *Service) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.store.Read(s.key)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("failed to read settings document, using defaults")
		doc = ""
	}

	return Settings{
		TrackLoot:          boolOr(doc, "trackLoot", true),
		TrackCollectionLog: boolOr(doc, "trackCollectionLog", true),
		TrackPets:          boolOr(doc, "trackPets", true),
		CaptureScreenshots: boolOr(doc, "captureScreenshots", true),
		MinLootValue:       intOr(doc, "minLootValue", 100000),
		SelectedServerID:   gjson.Get(doc, "selectedServerId").String(),
		SelectedEventID:    gjson.Get(doc, "selectedEventId").String(),
		DropDestinations:   gjson.Get(doc, "dropDestinations").String(),
		AuthToken:          gjson.Get(doc, "authToken").String(),
		DiscordID:          gjson.Get(doc, "discordId").String(),
		DiscordUsername:    gjson.Get(doc, "discordUsername").String(),
	}
}

// Set updates a single settings key in place. Writing a destination
// document that is not a JSON array is rejected with a coded status so the
// panel can surface it; reads stay fail-soft regardless.
func (s *Service) Set(key string, value interface{}) error {
	if key == "dropDestinations" {
		if doc, ok := value.(string); ok && doc != "" && (!gjson.Valid(doc) || !gjson.Parse(doc).IsArray()) {
			return trackererrors.ErrInvalidConfig
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Read(s.key)
	if err != nil {
		return errors.Wrap(err, "read settings document")
	}
	if doc == "" {
		doc = "{}"
	}

	doc, err = sjson.Set(doc, key, value)
	if err != nil {
		return errors.Wrapf(err, "set settings key %s", key)
	}

	if err := s.store.Write(s.key, doc); err != nil {
		return errors.Wrap(err, "write settings document")
	}
	return nil
}

// ClearCredentials wipes the persisted session after logout or an
// explicitly rejected token.
func (s *Service) ClearCredentials() error {
	for _, key := range []string{"authToken", "discordId", "discordUsername"} {
		if err := s.Set(key, ""); err != nil {
			return err
		}
	}
	return nil
}

// AuthToken satisfies the transport token source.
func (s *Service) AuthToken() string {
	return s.Snapshot().AuthToken
}

func boolOr(doc, path string, def bool) bool {
	v := gjson.Get(doc, path)
	if !v.Exists() {
		return def
	}
	return v.Bool()
}

func intOr(doc, path string, def int) int {
	v := gjson.Get(doc, path)
	if !v.Exists() {
		return def
	}
	return int(v.Int())
}
