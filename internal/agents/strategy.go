// Personality strategies. Each personality is one Strategy implementation;
// Decide routes to the right one. Strategies are pure functions of the
// agent, a read-only world view, and the world's seeded RNG.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/talgya/aethersync/internal/world"
)

// WorldView is the read-only slice of world state strategies may consult.
// The orchestrator implements it.
type WorldView interface {
	Bounds() world.Rect
	// Nearest returns the closest other agent by Manhattan distance,
	// ties broken by registration order. Nil when alone.
	Nearest(from *Agent) *Agent
	// Richest returns the wealthiest agent excluding the named one,
	// ties broken by registration order. Nil when alone.
	Richest(exclude string) *Agent
	// RandomOther returns a uniformly random other agent. Nil when alone.
	RandomOther(exclude string) *Agent
	// LandPrice is the fixed cost of claiming territory.
	LandPrice() int
}

// Strategy decides an agent's next action.
type Strategy interface {
	Decide(a *Agent, w WorldView, rng *rand.Rand) Action
}

var strategies = map[Personality]Strategy{
	PersonalityExplorer: explorerStrategy{},
	PersonalityGatherer: gathererStrategy{},
	PersonalitySocial:   socialStrategy{},
	PersonalityMerchant: merchantStrategy{},
	PersonalityFighter:  fighterStrategy{},
}

// Decide picks the agent's action for this tick via its personality
// strategy.
func Decide(a *Agent, w WorldView, rng *rand.Rand) Action {
	s, ok := strategies[a.Personality]
	if !ok {
		return Wait{}
	}
	return s.Decide(a, w, rng)
}

// edgeMargin is how close to a boundary an explorer gets before turning.
const edgeMargin = 2

type explorerStrategy struct{}

// Explorers roam, steering back toward the interior near a boundary.
func (explorerStrategy) Decide(a *Agent, w WorldView, rng *rand.Rand) Action {
	b := w.Bounds()
	pos := a.Position
	switch {
	case pos.Y-b.MinY < edgeMargin:
		return Move{Dir: steer(a, world.DirDown)}
	case b.MaxY-pos.Y < edgeMargin:
		return Move{Dir: steer(a, world.DirUp)}
	case pos.X-b.MinX < edgeMargin:
		return Move{Dir: steer(a, world.DirRight)}
	case b.MaxX-pos.X < edgeMargin:
		return Move{Dir: steer(a, world.DirLeft)}
	}
	return Move{Dir: randomDir(rng)}
}

type gathererStrategy struct{}

// Gatherers split time between searching, claiming land once wealthy
// enough, and wandering.
func (gathererStrategy) Decide(a *Agent, w WorldView, rng *rand.Rand) Action {
	if rng.Float64() > 0.7 {
		return Search{}
	}
	if a.Wallet >= w.LandPrice() {
		return BuyLand{}
	}
	return Move{Dir: steer(a, randomDir(rng))}
}

type socialStrategy struct{}

// Socials seek the nearest agent: adjacent they talk or trade, otherwise
// they close the distance along the larger axis.
func (socialStrategy) Decide(a *Agent, w WorldView, rng *rand.Rand) Action {
	other := w.Nearest(a)
	if other == nil {
		return Move{Dir: randomDir(rng)}
	}
	if a.Position.Adjacent(other.Position) {
		if rng.Float64() > 0.5 {
			return Say{Text: fmt.Sprintf("Hey %s! Want to team up?", other.Name)}
		}
		return OfferTrade{Target: other.Name}
	}
	return Move{Dir: steer(a, approach(a.Position, other.Position))}
}

type merchantStrategy struct{}

// Merchants chase the richest agent and sell on contact.
func (merchantStrategy) Decide(a *Agent, w WorldView, rng *rand.Rand) Action {
	target := w.Richest(a.Name)
	if target == nil {
		return Move{Dir: randomDir(rng)}
	}
	if a.Position.Adjacent(target.Position) && a.HasInventory() {
		return OfferTrade{Target: target.Name}
	}
	return Move{Dir: steer(a, approach(a.Position, target.Position))}
}

type fighterStrategy struct{}

// Fighters pick a random opponent and challenge when adjacent.
func (fighterStrategy) Decide(a *Agent, w WorldView, rng *rand.Rand) Action {
	target := w.RandomOther(a.Name)
	if target == nil {
		return Move{Dir: randomDir(rng)}
	}
	if a.Position.Adjacent(target.Position) {
		return Challenge{Target: target.Name}
	}
	return Move{Dir: steer(a, approach(a.Position, target.Position))}
}

// approach returns the direction stepping along the larger axis toward to.
func approach(from, to world.Coord) world.Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return world.DirRight
		}
		return world.DirLeft
	}
	if dy > 0 {
		return world.DirDown
	}
	return world.DirUp
}

// steer applies the anti-oscillation heuristic: after three consecutive
// moves in the same direction, switch to a perpendicular one.
func steer(a *Agent, d world.Direction) world.Direction {
	if d == a.LastDir && a.DirRepeat >= 3 {
		return d.Perpendicular()
	}
	return d
}

func randomDir(rng *rand.Rand) world.Direction {
	return world.Directions[rng.Intn(len(world.Directions))]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
