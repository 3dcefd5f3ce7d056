// Package routing computes, for one candidate drop, the effective set of
// destinations that should receive it. Qualification is per channel:
// content-type acceptance flags always apply, and for item drops the
// channel's minimum-value floor is checked against the total value of the
// retained item set. A destination qualifies when at least one of its
// channels does, and its entry carries only the qualifying channel ids.
package routing

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"osrsloottracker.dev/plugin-core/internal/destination"
	"osrsloottracker.dev/plugin-core/internal/model"
)

// Input is one routing request: the candidate plus an immutable snapshot of
// the destination configuration and the relevant user settings.
type Input struct {
	Drop *model.CandidateDrop

	// Destinations is the parsed structured destination list. When empty,
	// the legacy single-server fallback below is consulted instead.
	Destinations []model.DestinationConfig

	// LegacyServerID and LegacyEventID form the legacy fallback
	// destination. It has no channel-level filtering: any candidate that
	// reaches the engine qualifies.
	LegacyServerID string
	LegacyEventID  string

	// CaptureScreenshots is the user's screenshot toggle.
	CaptureScreenshots bool
}

// Decide computes the routing decision for one candidate drop. A nil
// decision means no destination qualifies and nothing may be submitted.
func Decide(in Input) *model.RoutingDecision {
	if len(in.Destinations) == 0 {
		return decideLegacy(in)
	}

	switch in.Drop.Kind {
	case model.KindItemDrop:
		return decideItemDrop(in)
	case model.KindCollectionLog:
		return decideFlagged(in, func(ch model.ChannelConfig) bool { return ch.AcceptsCollectionLog })
	case model.KindPet:
		return decideFlagged(in, func(ch model.ChannelConfig) bool { return ch.AcceptsPets })
	default:
		log.Warn().Str("kind", string(in.Drop.Kind)).Msg("unknown candidate kind, not routing")
		return nil
	}
}

func decideItemDrop(in Input) *model.RoutingDecision {
	threshold := destination.LowestActiveThreshold(in.Destinations)

	// cheap pre-filter: a drop whose every item is below the lowest floor
	// anywhere can never qualify, skip per-destination evaluation entirely
	retained := lo.Filter(in.Drop.Items, func(it model.DropItem, _ int) bool {
		return it.Value >= threshold
	})
	if len(retained) == 0 {
		log.Debug().
			Str("candidate", in.Drop.ID).
			Int("threshold", threshold).
			Msg("no item meets the lowest active threshold")
		return nil
	}

	total := lo.SumBy(retained, func(it model.DropItem) int { return it.Value })

	qualified := qualify(in.Destinations, func(ch model.ChannelConfig) bool {
		return ch.AcceptsValuableDrops && total >= ch.MinValue
	})
	if len(qualified) == 0 {
		log.Debug().Str("candidate", in.Drop.ID).Int("totalValue", total).Msg("no destination qualifies")
		return nil
	}

	return &model.RoutingDecision{
		Destinations:     qualified,
		Items:            retained,
		TotalValue:       total,
		AttachScreenshot: in.CaptureScreenshots,
	}
}

// decideFlagged handles collection log and pet candidates: they carry no
// meaningful value, so a channel qualifies purely on its acceptance flag.
func decideFlagged(in Input, accepts func(model.ChannelConfig) bool) *model.RoutingDecision {
	qualified := qualify(in.Destinations, accepts)
	if len(qualified) == 0 {
		log.Debug().Str("candidate", in.Drop.ID).Str("kind", string(in.Drop.Kind)).Msg("no destination qualifies")
		return nil
	}

	return &model.RoutingDecision{
		Destinations:     qualified,
		AttachScreenshot: in.CaptureScreenshots,
	}
}

func qualify(dests []model.DestinationConfig, accepts func(model.ChannelConfig) bool) []model.QualifiedDestination {
	return lo.FilterMap(dests, func(d model.DestinationConfig, _ int) (model.QualifiedDestination, bool) {
		// a destination with no channels is unscoped: it receives
		// everything with no channel-level filtering
		if len(d.Channels) == 0 {
			return model.QualifiedDestination{
				ServerID: d.ServerID,
				EventID:  d.EventID,
			}, true
		}

		channelIDs := lo.FilterMap(d.Channels, func(ch model.ChannelConfig, _ int) (string, bool) {
			return ch.ChannelID, accepts(ch)
		})
		if len(channelIDs) == 0 {
			return model.QualifiedDestination{}, false
		}

		return model.QualifiedDestination{
			ServerID:   d.ServerID,
			ChannelIDs: channelIDs,
			EventID:    d.EventID,
		}, true
	})
}

// decideLegacy synthesizes the single legacy destination. No channel-level
// filtering applies; the candidate qualifies whenever a server id is
// configured at all.
func decideLegacy(in Input) *model.RoutingDecision {
	if in.LegacyServerID == "" {
		return nil
	}

	dest := model.QualifiedDestination{
		ServerID: in.LegacyServerID,
	}
	if in.LegacyEventID != "" {
		dest.EventID = null.StringFrom(in.LegacyEventID)
	}

	decision := &model.RoutingDecision{
		Destinations:     []model.QualifiedDestination{dest},
		AttachScreenshot: in.CaptureScreenshots,
	}
	if in.Drop.Kind == model.KindItemDrop {
		decision.Items = in.Drop.Items
		decision.TotalValue = in.Drop.TotalValue
	}
	return decision
}
