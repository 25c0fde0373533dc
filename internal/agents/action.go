package agents

import (
	"github.com/talgya/aethersync/internal/world"
)

// Action is what an agent decided to do this tick. A closed set of
// variants; the executor switches exhaustively over them.
type Action interface {
	isAction()
}

// Move steps one tile in a direction, clamped to the world bounds.
type Move struct {
	Dir world.Direction
}

// Say appends a chat entry verbatim.
type Say struct {
	Text string
}

// Search draws a random item from the terrain-weighted loot table.
type Search struct{}

// BuyLand claims the agent's current tile as territory if affordable.
type BuyLand struct{}

// OfferTrade sells the agent's first inventory item to the target at a
// market quote, if the target can pay. One-shot, accept-if-affordable.
type OfferTrade struct {
	Target string
}

// Challenge starts a power-roll battle against the target.
type Challenge struct {
	Target string
}

// Wait does nothing for a tick.
type Wait struct{}

func (Move) isAction()       {}
func (Say) isAction()        {}
func (Search) isAction()     {}
func (BuyLand) isAction()    {}
func (OfferTrade) isAction() {}
func (Challenge) isAction()  {}
func (Wait) isAction()       {}
