// Ambient world events. Flavor text is weighted by the terrain under a
// randomly chosen agent, falling back to the generic list in an empty
// world.
package sim

import (
	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/chat"
	"github.com/talgya/aethersync/internal/economy"
	"github.com/talgya/aethersync/internal/world"
)

var genericEvents = []string{
	"A wild Pidgey flies overhead",
	"Market prices shift slightly",
	"A trainer walks by",
	"Wind rustles the grass",
	"Sunlight breaks through clouds",
	"You hear a distant cry",
	"A merchant passes through",
	"The air feels electric",
}

var terrainEvents = map[world.Terrain][]string{
	world.TerrainTallGrass: {
		"Something stirs in the tall grass",
		"A wild Rattata darts past",
		"The grass whispers with hidden movement",
	},
	world.TerrainWater: {
		"Ripples spread across the water",
		"A Magikarp splashes nearby",
	},
	world.TerrainTown: {
		"A shopkeeper sweeps their doorstep",
		"Townsfolk chatter about the weather",
	},
	world.TerrainCave: {
		"An echo rolls out of the cave mouth",
		"Zubat screeches somewhere in the dark",
	},
}

// ambientEvent appends one random world event to the overlay.
func (w *World) ambientEvent() {
	pool := genericEvents

	if len(w.order) > 0 {
		a := w.agents[w.order[w.rng.Intn(len(w.order))]]
		if flavored, ok := terrainEvents[w.terrain.At(a.Position)]; ok {
			// Half the time lean into local flavor.
			if w.rng.Float64() < 0.5 {
				pool = flavored
			}
		}
	}

	w.chatLog.Append(w.tick, "World", pool[w.rng.Intn(len(pool))], chat.KindEvent)
}

// lootWeights bias the search table per terrain. Unlisted terrains draw
// uniformly.
var lootWeights = map[world.Terrain][]economy.ItemKind{
	world.TerrainTallGrass: {
		economy.ItemPokeball, economy.ItemPokeball, economy.ItemPotion,
		economy.ItemRareCandy, economy.ItemMysteryBox,
	},
	world.TerrainWater: {
		economy.ItemPotion, economy.ItemPotion, economy.ItemPokeball,
		economy.ItemMysteryBox,
	},
	world.TerrainCave: {
		economy.ItemGoldNugget, economy.ItemGoldNugget, economy.ItemRareCandy,
		economy.ItemPotion,
	},
	world.TerrainTown: {
		economy.ItemLandDeed, economy.ItemMysteryBox, economy.ItemPotion,
		economy.ItemPokeball,
	},
}

// drawLoot picks an item kind for a search, weighted by the terrain the
// agent is standing on.
func (w *World) drawLoot(a *agents.Agent) economy.ItemKind {
	if table, ok := lootWeights[w.terrain.At(a.Position)]; ok {
		return table[w.rng.Intn(len(table))]
	}
	return economy.AllItemKinds[w.rng.Intn(economy.NumItemKinds)]
}
