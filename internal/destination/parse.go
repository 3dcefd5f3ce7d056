// Package destination parses the user-configured drop destination document
// into the one internal shape the routing engine consumes. Two wire shapes
// are accepted for backward compatibility:
//
//	legacy:     [{"serverId": "...", "channelIds": ["...", ...]}]
//	structured: [{"serverId": "...", "channels": [{"channelId": "...",
//	             "minValue": 0, "acceptsValuableDrops": true, ...}]}]
//
// Older documents written by the original plugin carry "guildId" in place of
// "serverId"; both are read. Parsing fails soft: a document that is not
// valid JSON yields an empty list, and individually malformed entries or
// channels are skipped with a warning, never aborting the rest.
package destination

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3"

	"github.com/goccy/go-json"

	"osrsloottracker.dev/plugin-core/internal/model"
)

var validate = validator.New()

// Parse converts a raw destination document into destination configs. The
// input is never mutated; parsing the same document twice yields
// structurally identical results.
func Parse(raw string) []model.DestinationConfig {
	if raw == "" || raw == "[]" {
		return nil
	}
	if !gjson.Valid(raw) {
		log.Warn().Str("document", raw).Msg("destination document is not valid JSON, ignoring")
		return nil
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		log.Warn().Msg("destination document is not an array, ignoring")
		return nil
	}

	dests := make([]model.DestinationConfig, 0, len(parsed.Array()))
	seen := map[string]bool{}

	for _, elem := range parsed.Array() {
		serverID := elem.Get("serverId").String()
		if serverID == "" {
			// key written by the original plugin revisions
			serverID = elem.Get("guildId").String()
		}
		if serverID == "" {
			log.Warn().Str("entry", elem.Raw).Msg("destination entry has no server id, skipping")
			continue
		}
		if seen[serverID] {
			log.Warn().Str("serverId", serverID).Msg("duplicate destination server id, keeping first")
			continue
		}
		seen[serverID] = true

		dest := model.DestinationConfig{
			ServerID: serverID,
			Channels: parseChannels(elem),
		}
		if eventID := elem.Get("eventId"); eventID.Exists() && eventID.Type == gjson.String && eventID.String() != "" {
			dest.EventID = null.StringFrom(eventID.String())
		}

		dests = append(dests, dest)
	}

	return dests
}

func parseChannels(elem gjson.Result) []model.ChannelConfig {
	if channels := elem.Get("channels"); channels.IsArray() {
		return lo.FilterMap(channels.Array(), func(ch gjson.Result, _ int) (model.ChannelConfig, bool) {
			cfg := model.DefaultChannelConfig()
			if err := json.Unmarshal([]byte(ch.Raw), &cfg); err != nil {
				log.Warn().Err(err).Str("channel", ch.Raw).Msg("malformed channel entry, skipping")
				return model.ChannelConfig{}, false
			}
			if err := validate.Struct(cfg); err != nil {
				log.Warn().Err(err).Str("channel", ch.Raw).Msg("invalid channel entry, skipping")
				return model.ChannelConfig{}, false
			}
			return cfg, true
		})
	}

	// legacy flat channel id list: no threshold, accept everything
	if channelIDs := elem.Get("channelIds"); channelIDs.IsArray() {
		return lo.FilterMap(channelIDs.Array(), func(id gjson.Result, _ int) (model.ChannelConfig, bool) {
			if id.String() == "" {
				return model.ChannelConfig{}, false
			}
			cfg := model.DefaultChannelConfig()
			cfg.ChannelID = id.String()
			return cfg, true
		})
	}

	return nil
}

// LowestActiveThreshold is the minimum per-channel value floor across all
// configured destinations, used as a cheap pre-filter before per-item
// processing. Returns 0 when no channels are configured, meaning no
// pre-filtering at all.
func LowestActiveThreshold(dests []model.DestinationConfig) int {
	channels := lo.FlatMap(dests, func(d model.DestinationConfig, _ int) []model.ChannelConfig {
		return d.Channels
	})
	if len(channels) == 0 {
		return 0
	}
	return lo.MinBy(channels, func(a, b model.ChannelConfig) bool {
		return a.MinValue < b.MinValue
	}).MinValue
}
