package model

import (
	"gopkg.in/guregu/null.v3"
)

// ChannelConfig is one channel entry under a configured destination server.
// A channel with MinValue of 0 accepts every drop value.
type ChannelConfig struct {
	ChannelID            string `json:"channelId" validate:"required"`
	MinValue             int    `json:"minValue" validate:"min=0"`
	AcceptsValuableDrops bool   `json:"acceptsValuableDrops"`
	AcceptsCollectionLog bool   `json:"acceptsCollectionLog"`
	AcceptsPets          bool   `json:"acceptsPets"`
}

// DefaultChannelConfig carries the wire defaults: absent accept flags mean
// "accept", an absent threshold means "no floor". Parsers unmarshal on top
// of this value so omitted fields keep the defaults.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		AcceptsValuableDrops: true,
		AcceptsCollectionLog: true,
		AcceptsPets:          true,
	}
}

// DestinationConfig is one configured destination server. A destination with
// no channels is unscoped: it receives everything with no channel-level
// filtering. Both the legacy flat channelIds wire shape and the single
// selected-server fallback normalize into this shape.
type DestinationConfig struct {
	ServerID string
	Channels []ChannelConfig
	EventID  null.String
}

// QualifiedDestination is a destination that passed routing, carrying only
// the channel ids that qualified.
type QualifiedDestination struct {
	ServerID   string
	ChannelIDs []string
	EventID    null.String
}

// RoutingDecision is the ephemeral output of the routing engine for one
// candidate drop. A nil decision, or one with no destinations, means the
// drop must not be submitted.
type RoutingDecision struct {
	Destinations []QualifiedDestination

	// Items is the retained item set after the lowest-threshold pre-filter,
	// with TotalValue its sum. Nil for collection-log and pet candidates.
	Items      []DropItem
	TotalValue int

	// AttachScreenshot is set when screenshot capture is enabled and at
	// least one destination qualified.
	AttachScreenshot bool
}

// Submittable reports whether the decision carries at least one destination.
func (d *RoutingDecision) Submittable() bool {
	return d != nil && len(d.Destinations) > 0
}
