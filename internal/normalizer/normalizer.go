// Package normalizer converts heterogeneous inbound host signals into the
// uniform candidate-drop record the rest of the pipeline consumes. It is a
// pure transform: no shared state besides a price memo, no side effects on
// its inputs.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/model"
)

const (
	collectionLogMarker = "New item added to your collection log:"

	// the two known pet acquisition phrasings; the "would have been"
	// variant means the pet was a duplicate or the inventory was full, so
	// no follower spawned
	petFollowMarker   = "You have a funny feeling"
	petBackpackMarker = "You feel something weird sneaking into your backpack"
	petDuplicateHint  = "would have been followed"
)

// colorTagRe matches the inline color markup the client wraps item names
// in, e.g. <col=ffff00>Ranger boots</col>.
var colorTagRe = regexp.MustCompile(`<col=[0-9a-fA-F]+>|</col>`)

type Normalizer struct {
	items host.ItemResolver

	// prices memoizes unit prices per item id; the host's price lookup is
	// authoritative but not free
	prices *cache.Cache

	clock func() time.Time
}

func New(items host.ItemResolver) *Normalizer {
	return &Normalizer{
		items:  items,
		prices: cache.New(5*time.Minute, 10*time.Minute),
		clock:  time.Now,
	}
}

// WithClock replaces the capture timestamp source. Tests only.
func (n *Normalizer) WithClock(clock func() time.Time) *Normalizer {
	n.clock = clock
	return n
}

// FromLoot converts a multi-item loot signal into an ITEM_DROP candidate.
func (n *Normalizer) FromLoot(sig *host.LootSignal) *model.CandidateDrop {
	items := lo.Map(sig.Items, func(stack host.ItemStack, _ int) model.DropItem {
		return model.DropItem{
			Name:     n.items.NameOf(stack.ItemID),
			Quantity: stack.Quantity,
			Value:    n.unitPrice(stack.ItemID) * stack.Quantity,
		}
	})

	return &model.CandidateDrop{
		ID:         model.NewCandidateID(),
		PlayerName: playerOrUnknown(sig.PlayerName),
		Kind:       model.KindItemDrop,
		Items:      items,
		SourceName: sig.SourceName,
		TotalValue: lo.SumBy(items, func(it model.DropItem) int { return it.Value }),
		CapturedAt: n.clock(),
	}
}

// FromChat converts a game chat line into a COLLECTION_LOG or PET
// candidate, or nil when the line carries neither.
func (n *Normalizer) FromChat(sig *host.ChatSignal) *model.CandidateDrop {
	if sig.Type != host.ChatTypeGameMessage {
		return nil
	}

	if strings.Contains(sig.Message, collectionLogMarker) {
		itemName, ok := ExtractCollectionLogItem(sig.Message)
		if !ok {
			log.Debug().Str("message", sig.Message).Msg("collection log message without extractable item name, dropping")
			return nil
		}
		return &model.CandidateDrop{
			ID:          model.NewCandidateID(),
			PlayerName:  playerOrUnknown(sig.PlayerName),
			Kind:        model.KindCollectionLog,
			SourceName:  "Collection Log",
			DisplayName: itemName,
			CapturedAt:  n.clock(),
		}
	}

	if strings.Contains(sig.Message, petFollowMarker) || strings.Contains(sig.Message, petBackpackMarker) {
		return &model.CandidateDrop{
			ID:           model.NewCandidateID(),
			PlayerName:   playerOrUnknown(sig.PlayerName),
			Kind:         model.KindPet,
			SourceName:   "Pet",
			RawMessage:   sig.Message,
			PetDuplicate: strings.Contains(sig.Message, petDuplicateHint),
			CapturedAt:   n.clock(),
		}
	}

	return nil
}

// ExtractCollectionLogItem pulls the item name out of a collection log
// message: the substring after the final colon, with color markup stripped.
// Reports false when no colon is present or nothing follows it.
func ExtractCollectionLogItem(message string) (string, bool) {
	colon := strings.LastIndex(message, ":")
	if colon == -1 || colon == len(message)-1 {
		return "", false
	}

	name := strings.TrimSpace(message[colon+1:])
	name = strings.TrimSpace(colorTagRe.ReplaceAllString(name, ""))
	if name == "" {
		return "", false
	}
	return name, true
}

func (n *Normalizer) unitPrice(itemID int) int {
	key := strconv.Itoa(itemID)
	if v, ok := n.prices.Get(key); ok {
		return v.(int)
	}
	price := n.items.PriceOf(itemID)
	n.prices.SetDefault(key, price)
	return price
}

func playerOrUnknown(name string) string {
	if name == "" {
		return model.UnknownPlayerName
	}
	return name
}
