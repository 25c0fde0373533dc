// Package agents provides the agent data model and the personality-driven
// decision strategies.
package agents

import (
	"github.com/talgya/aethersync/internal/economy"
	"github.com/talgya/aethersync/internal/world"
)

// Personality is a fixed behavioral strategy tag.
type Personality uint8

const (
	PersonalityExplorer Personality = iota
	PersonalityGatherer
	PersonalitySocial
	PersonalityMerchant
	PersonalityFighter
)

// String returns the wire name of the personality.
func (p Personality) String() string {
	switch p {
	case PersonalityExplorer:
		return "explorer"
	case PersonalityGatherer:
		return "gatherer"
	case PersonalitySocial:
		return "social"
	case PersonalityMerchant:
		return "merchant"
	case PersonalityFighter:
		return "fighter"
	}
	return "unknown"
}

// ParsePersonality maps a wire name back to a Personality.
func ParsePersonality(s string) (Personality, bool) {
	switch s {
	case "explorer":
		return PersonalityExplorer, true
	case "gatherer":
		return PersonalityGatherer, true
	case "social":
		return PersonalitySocial, true
	case "merchant":
		return PersonalityMerchant, true
	case "fighter":
		return PersonalityFighter, true
	}
	return 0, false
}

// Agent is one inhabitant of the world. Created on registration, mutated
// every tick by its own actions or by other agents' trades and battles,
// never destroyed within a run.
type Agent struct {
	Name        string         `json:"name"`
	Personality Personality    `json:"personality"`
	Position    world.Coord    `json:"position"`
	Wallet      int            `json:"wallet"`
	Inventory   []economy.Item `json:"inventory"`
	Level       int            `json:"level"`
	XP          int            `json:"xp"`
	Reputation  int            `json:"reputation"`
	Actions     int            `json:"actions"`

	// Anti-oscillation memory: the last direction moved and how many
	// consecutive ticks it repeated.
	LastDir   world.Direction `json:"-"`
	DirRepeat int             `json:"-"`
}

// LevelUpThreshold returns the XP needed for the agent's next level.
func (a *Agent) LevelUpThreshold() int {
	return a.Level * 10
}

// HasInventory reports whether the agent holds at least one item.
func (a *Agent) HasInventory() bool {
	return len(a.Inventory) > 0
}
