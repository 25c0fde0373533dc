// Package sim ties the world together: the orchestrator owns every piece
// of mutable simulation state and advances it one tick at a time.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/chat"
	"github.com/talgya/aethersync/internal/economy"
	"github.com/talgya/aethersync/internal/world"
)

// Territory is a claimed grid cell that taxes non-owner agents standing
// on it. Created by buy_land, never removed.
type Territory struct {
	Position world.Coord `json:"position"`
	Owner    string      `json:"owner"`
	Name     string      `json:"name"`
	Value    int         `json:"value"`
	TaxRate  float64     `json:"tax_rate"`
}

// Config holds the tunable simulation parameters.
type Config struct {
	Bounds       world.Rect // Movement clamp rectangle
	SpawnBox     world.Rect // Registration spawn area
	LandPrice    int        // Cost of buy_land
	TaxRate      float64    // Territory tax fraction
	LevelBonus   int        // Gold granted on level-up
	ChatCapacity int        // Overlay buffer length
	EventChance  float64    // Per-tick ambient event probability
	MarketPeriod uint64     // Ticks between market perturbations
	Seed         int64      // RNG seed (0 = fixed default)
}

// DefaultConfig carries the constants of the richest script variant.
func DefaultConfig() Config {
	return Config{
		Bounds:       world.Rect{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11},
		SpawnBox:     world.Rect{MinX: 4, MinY: 3, MaxX: 8, MaxY: 7},
		LandPrice:    150,
		TaxRate:      0.05,
		LevelBonus:   50,
		ChatCapacity: chat.DefaultCapacity,
		EventChance:  0.12,
		MarketPeriod: 10,
		Seed:         42,
	}
}

// Stats aggregates counters over a run.
type Stats struct {
	Ticks      uint64         `json:"ticks"`
	Moves      map[string]int `json:"moves"` // direction name → count
	Searches   int            `json:"searches"`
	Trades     int            `json:"trades"`
	Battles    int            `json:"battles"`
	LandClaims int            `json:"land_claims"`
	LevelUps   int            `json:"level_ups"`
}

// World is the orchestrator. All state is owned here and advanced by
// Tick; there is no concurrency inside the simulation itself. The
// mutex exists for outside observers: HTTP handlers read snapshots
// while the engine goroutine ticks.
type World struct {
	mu      sync.RWMutex
	cfg     Config
	agents  map[string]*agents.Agent
	order   []string // registration order, the only fairness guarantee
	terrs   []Territory
	market  *economy.Market
	chatLog *chat.Log
	terrain *world.Grid
	tick    uint64
	rng     *rand.Rand
	stats   Stats
}

// NewWorld builds a world from config. Terrain and all stochastic
// behavior derive from the config seed, so runs are reproducible.
func NewWorld(cfg Config) *World {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MarketPeriod == 0 {
		cfg.MarketPeriod = 10
	}
	return &World{
		cfg:     cfg,
		agents:  make(map[string]*agents.Agent),
		market:  economy.NewMarket(),
		chatLog: chat.NewLog(cfg.ChatCapacity),
		terrain: world.GenerateGrid(cfg.Bounds, cfg.Seed),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		stats:   Stats{Moves: make(map[string]int)},
	}
}

// Register creates an agent at a random spawn position. Registering an
// existing name is idempotent and returns the current agent.
func (w *World) Register(name string, p agents.Personality) *agents.Agent {
	w.mu.Lock()
	defer w.mu.Unlock()

	if a, ok := w.agents[name]; ok {
		slog.Debug("agent already registered", "name", name)
		return a
	}

	a := &agents.Agent{
		Name:        name,
		Personality: p,
		Position: world.Coord{
			X: w.cfg.SpawnBox.MinX + w.rng.Intn(w.cfg.SpawnBox.Width()),
			Y: w.cfg.SpawnBox.MinY + w.rng.Intn(w.cfg.SpawnBox.Height()),
		},
		Wallet:     100 + w.rng.Intn(101),
		Level:      1,
		Reputation: 50,
	}
	w.agents[name] = a
	w.order = append(w.order, name)

	w.chatLog.Append(w.tick, "system",
		fmt.Sprintf("%s the %s enters Kanto-Prime!", name, p), chat.KindJoin)
	slog.Info("agent registered", "name", name, "personality", p.String(),
		"x", a.Position.X, "y", a.Position.Y, "wallet", a.Wallet)
	return a
}

// Tick advances the world one step: every agent decides and acts in
// registration order, co-located agents meet, and the ambient world
// stirs.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	w.stats.Ticks = w.tick

	for _, name := range w.order {
		a := w.agents[name]
		action := agents.Decide(a, w, w.rng)
		w.apply(a, action)
	}

	w.checkInteractions()

	if w.rng.Float64() < w.cfg.EventChance {
		w.ambientEvent()
	}

	if w.tick%w.cfg.MarketPeriod == 0 {
		w.market.Perturb(w.rng)
	}
}

// checkInteractions logs one MET entry per co-located pair this tick.
func (w *World) checkInteractions() {
	for i, n1 := range w.order {
		for _, n2 := range w.order[i+1:] {
			a1, a2 := w.agents[n1], w.agents[n2]
			if a1.Position == a2.Position {
				w.chatLog.Append(w.tick, "system",
					fmt.Sprintf("%s and %s have met at (%d, %d)",
						a1.Name, a2.Name, a1.Position.X, a1.Position.Y),
					chat.KindMet)
			}
		}
	}
}

// Tick counter, strictly increasing.
func (w *World) CurrentTick() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Chat exposes the overlay log.
func (w *World) Chat() *chat.Log { return w.chatLog }

// Market exposes the live price board. Callers on other goroutines use
// PriceBoard instead.
func (w *World) Market() *economy.Market { return w.market }

// Terrain exposes the flavor grid.
func (w *World) Terrain() *world.Grid { return w.terrain }

// Stats returns a copy of the run counters.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.stats
	moves := make(map[string]int, len(s.Moves))
	for k, v := range s.Moves {
		moves[k] = v
	}
	s.Moves = moves
	return s
}

// Agent returns the named live agent, or nil. The pointer aliases
// simulation state: callers on other goroutines use AgentView instead.
func (w *World) Agent(name string) *agents.Agent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.agents[name]
}

// Agents returns all live agents in registration order. Same aliasing
// caveat as Agent.
func (w *World) Agents() []*agents.Agent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*agents.Agent, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.agents[name])
	}
	return out
}

// AgentViews returns value copies of every agent in registration order,
// inventories included. HTTP handlers read these while the engine
// goroutine ticks, so they must not share memory with the live agents.
func (w *World) AgentViews() []agents.Agent {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]agents.Agent, 0, len(w.order))
	for _, name := range w.order {
		a := *w.agents[name]
		a.Inventory = append([]economy.Item(nil), a.Inventory...)
		out = append(out, a)
	}
	return out
}

// AgentView returns a value copy of the named agent, false if absent.
func (w *World) AgentView(name string) (agents.Agent, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[name]
	if !ok {
		return agents.Agent{}, false
	}
	view := *a
	view.Inventory = append([]economy.Item(nil), view.Inventory...)
	return view, true
}

// PriceBoard returns the current market prices keyed by wire name.
func (w *World) PriceBoard() map[string]int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int, economy.NumItemKinds)
	for _, kind := range economy.AllItemKinds {
		out[kind.String()] = w.market.Price(kind)
	}
	return out
}

// Territories returns all claimed territories in claim order.
func (w *World) Territories() []Territory {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Territory, len(w.terrs))
	copy(out, w.terrs)
	return out
}

// RestoreAgent reinstates a persisted agent verbatim, preserving
// registration order semantics. Used by the persistence layer.
func (w *World) RestoreAgent(a *agents.Agent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.agents[a.Name]; !ok {
		w.order = append(w.order, a.Name)
	}
	w.agents[a.Name] = a
}

// RestoreTerritory reinstates a persisted territory.
func (w *World) RestoreTerritory(t Territory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.terrs = append(w.terrs, t)
}

// RestoreTick fast-forwards the tick counter after a load.
func (w *World) RestoreTick(tick uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if tick > w.tick {
		w.tick = tick
		w.stats.Ticks = tick
	}
}

// ── agents.WorldView ─────────────────────────────────────────────────
//
// These run inside Tick under the write lock, so they take no locks of
// their own.

// Bounds returns the movement clamp rectangle.
func (w *World) Bounds() world.Rect { return w.cfg.Bounds }

// LandPrice returns the fixed territory cost.
func (w *World) LandPrice() int { return w.cfg.LandPrice }

// Nearest returns the closest other agent by Manhattan distance. Ties
// break by registration order: the earlier-registered agent wins.
func (w *World) Nearest(from *agents.Agent) *agents.Agent {
	var best *agents.Agent
	bestDist := 0
	for _, name := range w.order {
		a := w.agents[name]
		if a.Name == from.Name {
			continue
		}
		d := from.Position.Manhattan(a.Position)
		if best == nil || d < bestDist {
			best = a
			bestDist = d
		}
	}
	return best
}

// Richest returns the wealthiest agent excluding the named one, ties
// broken by registration order.
func (w *World) Richest(exclude string) *agents.Agent {
	var best *agents.Agent
	for _, name := range w.order {
		a := w.agents[name]
		if a.Name == exclude {
			continue
		}
		if best == nil || a.Wallet > best.Wallet {
			best = a
		}
	}
	return best
}

// RandomOther returns a uniformly random other agent.
func (w *World) RandomOther(exclude string) *agents.Agent {
	candidates := make([]*agents.Agent, 0, len(w.order))
	for _, name := range w.order {
		if name != exclude {
			candidates = append(candidates, w.agents[name])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[w.rng.Intn(len(candidates))]
}
