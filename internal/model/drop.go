package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DropKind discriminates downstream handling of a candidate drop.
type DropKind string

const (
	KindItemDrop      DropKind = "ITEM_DROP"
	KindCollectionLog DropKind = "COLLECTION_LOG"
	KindPet           DropKind = "PET"
)

// UnknownPlayerName is substituted when the host cannot resolve the local
// player's display name at capture time.
const UnknownPlayerName = "Unknown"

// DropItem is one item stack within an ITEM_DROP candidate. Value is the
// unit price multiplied by Quantity, resolved at capture time.
type DropItem struct {
	Name     string `json:"item_name"`
	Quantity int    `json:"quantity"`
	Value    int    `json:"item_value"`
}

// CandidateDrop is the normalized internal unit of work. Invariant: Items is
// non-empty if and only if Kind is KindItemDrop; KindCollectionLog and
// KindPet candidates carry their subject in DisplayName instead.
type CandidateDrop struct {
	ID         string
	PlayerName string
	Kind       DropKind
	Items      []DropItem
	SourceName string
	TotalValue int

	// DisplayName is the extracted collection-log item name, or the resolved
	// pet name. Empty for KindItemDrop.
	DisplayName string

	// RawMessage retains the original chat text for KindPet candidates so
	// the backend can extract supplementary context.
	RawMessage string

	// PetDuplicate is set for the "would have been followed" phrasing: the
	// pet was already owned or the inventory was full, so no follower was
	// spawned and the follower lookup cannot be trusted.
	PetDuplicate bool

	CapturedAt time.Time
}

// NewCandidateID returns a lexicographically sortable candidate id.
func NewCandidateID() string {
	return ulid.Make().String()
}
