// Package economy provides the item catalog and the market price board.
package economy

import (
	"math/rand"
)

// ItemKind enumerates the tradeable item types.
type ItemKind uint8

const (
	ItemPotion ItemKind = iota
	ItemPokeball
	ItemGoldNugget
	ItemRareCandy
	ItemLandDeed
	ItemMysteryBox
)

// NumItemKinds is the total number of item kinds.
const NumItemKinds = 6

// AllItemKinds lists every kind in a fixed order, for uniform draws.
var AllItemKinds = [NumItemKinds]ItemKind{
	ItemPotion, ItemPokeball, ItemGoldNugget,
	ItemRareCandy, ItemLandDeed, ItemMysteryBox,
}

// String returns the wire name of the item kind.
func (k ItemKind) String() string {
	switch k {
	case ItemPotion:
		return "potion"
	case ItemPokeball:
		return "pokeball"
	case ItemGoldNugget:
		return "gold_nugget"
	case ItemRareCandy:
		return "rare_candy"
	case ItemLandDeed:
		return "land_deed"
	case ItemMysteryBox:
		return "mystery_box"
	}
	return "unknown"
}

// Item is a stack of goods held by an agent. Owner always names the agent
// currently holding the item; trades update it atomically with the move.
type Item struct {
	Kind     ItemKind `json:"kind"`
	Quantity int      `json:"quantity"`
	Owner    string   `json:"owner"`
	Value    int      `json:"value"`
}

// Market is the shared price board. Prices drift by a bounded random walk
// and never fall below the floor.
type Market struct {
	Prices map[ItemKind]int `json:"prices"`
}

// PriceFloor is the minimum price any item can drift down to.
const PriceFloor = 10

// basePrices are the opening quotes for each item kind.
var basePrices = map[ItemKind]int{
	ItemPotion:     20,
	ItemPokeball:   50,
	ItemGoldNugget: 100,
	ItemRareCandy:  200,
	ItemLandDeed:   150,
	ItemMysteryBox: 75,
}

// NewMarket creates a market at base prices.
func NewMarket() *Market {
	prices := make(map[ItemKind]int, len(basePrices))
	for kind, base := range basePrices {
		prices[kind] = base
	}
	return &Market{Prices: prices}
}

// BasePrice returns the opening quote for a kind.
func BasePrice(kind ItemKind) int {
	return basePrices[kind]
}

// Price returns the current quote for a kind.
func (m *Market) Price(kind ItemKind) int {
	return m.Prices[kind]
}

// Perturb applies one random-walk step of -2..+5 to every price,
// clamped at the floor. Kinds are visited in catalog order so the walk
// consumes the RNG deterministically for a given seed.
func (m *Market) Perturb(rng *rand.Rand) {
	for _, kind := range AllItemKinds {
		change := rng.Intn(8) - 2
		price := m.Prices[kind] + change
		if price < PriceFloor {
			price = PriceFloor
		}
		m.Prices[kind] = price
	}
}

// Quote returns the current price for a kind with a ±5 negotiation jitter.
// Quotes can dip below the floor; the floor only binds the board itself.
func (m *Market) Quote(kind ItemKind, rng *rand.Rand) int {
	return m.Prices[kind] + rng.Intn(11) - 5
}
