// Package host models the boundary to the game-client runtime the plugin
// runs inside: the inbound event stream and the capability interfaces the
// core consumes. The runtime's actual callback/subscription mechanism is an
// adapter behind this package; the core never touches it directly.
package host

// Signal is one inbound event delivered by the host runtime.
type Signal interface {
	signal()
}

// ItemStack is one raw item stack within a loot signal, before price and
// name resolution.
type ItemStack struct {
	ItemID   int `json:"id"`
	Quantity int `json:"quantity"`
}

// LootSignal is a multi-item loot delivery (NPC kill, player kill, event
// reward). PlayerName may be empty when the local player is not resolvable.
type LootSignal struct {
	PlayerName string      `json:"player"`
	SourceName string      `json:"source"`
	RecordType string      `json:"record_type"`
	Items      []ItemStack `json:"items"`
}

// ChatSignal is one game chat line. Only game messages are of interest;
// other chat types are dropped by the normalizer.
type ChatSignal struct {
	PlayerName string `json:"player"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

const ChatTypeGameMessage = "GAMEMESSAGE"

func (*LootSignal) signal() {}
func (*ChatSignal) signal() {}
