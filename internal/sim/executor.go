// Action executor: interprets the closed action set and mutates world
// and agent state. Effects and constants follow the overworld economy
// rules; wallets are clamped by availability checks before any transfer,
// so they can never go negative.
package sim

import (
	"fmt"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/chat"
	"github.com/talgya/aethersync/internal/economy"
)

const (
	battleWinCap  = 50 // Max gold a challenger takes from a win
	battleLossCap = 30 // Max gold a challenger loses on a defeat
	tradeMinFunds = 30 // Buyer must hold at least this to be approached
)

// Apply executes one action for the agent.
func (w *World) Apply(a *agents.Agent, action agents.Action) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.apply(a, action)
}

// apply is the unlocked executor; Tick calls it under the write lock.
func (w *World) apply(a *agents.Agent, action agents.Action) {
	switch act := action.(type) {
	case agents.Move:
		w.applyMove(a, act)
	case agents.Say:
		w.chatLog.Append(w.tick, a.Name, act.Text, chat.KindChat)
	case agents.Search:
		w.applySearch(a)
	case agents.BuyLand:
		w.applyBuyLand(a)
	case agents.OfferTrade:
		w.applyTrade(a, act.Target)
	case agents.Challenge:
		w.applyChallenge(a, act.Target)
	case agents.Wait:
		// Nothing to do.
	}
}

func (w *World) applyMove(a *agents.Agent, act agents.Move) {
	a.Position = w.cfg.Bounds.Clamp(a.Position.Step(act.Dir))
	a.Actions++
	w.stats.Moves[act.Dir.String()]++

	if act.Dir == a.LastDir {
		a.DirRepeat++
	} else {
		a.LastDir = act.Dir
		a.DirRepeat = 1
	}

	w.gainXP(a, 1)

	// Announce movement periodically, not every step.
	if a.Actions%5 == 0 {
		w.chatLog.Append(w.tick, a.Name,
			fmt.Sprintf("Moving %s to (%d, %d)", act.Dir, a.Position.X, a.Position.Y),
			chat.KindMovement)
	}

	w.chargeTerritoryTax(a)
}

// chargeTerritoryTax charges floor(wallet × rate) to a non-owner standing
// on claimed land, crediting the owner while they remain registered.
func (w *World) chargeTerritoryTax(a *agents.Agent) {
	for _, t := range w.terrs {
		if t.Position != a.Position || t.Owner == a.Name {
			continue
		}
		tax := int(float64(a.Wallet) * t.TaxRate)
		if tax <= 0 {
			continue
		}
		a.Wallet -= tax
		if owner, ok := w.agents[t.Owner]; ok {
			owner.Wallet += tax
		}
		w.chatLog.Append(w.tick, a.Name,
			fmt.Sprintf("Paid %dg tax to %s's territory", tax, t.Owner),
			chat.KindSystem)
	}
}

func (w *World) applySearch(a *agents.Agent) {
	kind := w.drawLoot(a)
	item := economy.Item{
		Kind:     kind,
		Quantity: 1,
		Owner:    a.Name,
		Value:    w.market.Price(kind),
	}
	a.Inventory = append(a.Inventory, item)
	w.stats.Searches++
	w.gainXP(a, 5)
	w.chatLog.Append(w.tick, a.Name, fmt.Sprintf("Found %s!", kind), chat.KindLoot)
}

func (w *World) applyBuyLand(a *agents.Agent) {
	if a.Wallet < w.cfg.LandPrice {
		return
	}
	a.Wallet -= w.cfg.LandPrice
	t := Territory{
		Position: a.Position,
		Owner:    a.Name,
		Name:     fmt.Sprintf("%s's Land", a.Name),
		Value:    w.cfg.LandPrice,
		TaxRate:  w.cfg.TaxRate,
	}
	w.terrs = append(w.terrs, t)
	a.Inventory = append(a.Inventory, economy.Item{
		Kind: economy.ItemLandDeed, Quantity: 1, Owner: a.Name, Value: w.cfg.LandPrice,
	})
	w.stats.LandClaims++
	w.chatLog.Append(w.tick, a.Name,
		fmt.Sprintf("Bought land at (%d, %d)!", a.Position.X, a.Position.Y),
		chat.KindSystem)
}

// applyTrade moves the seller's first inventory item to the buyer at a
// jittered market quote. One-shot: the trade happens iff the buyer can
// pay. Item ownership changes together with the gold.
func (w *World) applyTrade(seller *agents.Agent, target string) {
	buyer, ok := w.agents[target]
	if !ok || !seller.HasInventory() || buyer.Wallet < tradeMinFunds {
		return
	}

	item := seller.Inventory[0]
	price := w.market.Quote(item.Kind, w.rng)
	if price < 0 || buyer.Wallet < price {
		return
	}

	buyer.Wallet -= price
	seller.Wallet += price
	item.Owner = buyer.Name
	seller.Inventory = seller.Inventory[1:]
	buyer.Inventory = append(buyer.Inventory, item)

	w.stats.Trades++
	w.chatLog.Append(w.tick, seller.Name,
		fmt.Sprintf("Sold %s to %s for %dg!", item.Kind, buyer.Name, price),
		chat.KindTrade)
}

// applyChallenge resolves a battle by power rolls of rand(1..10)+level.
// The winner takes a capped tenth of the loser's wallet.
func (w *World) applyChallenge(challenger *agents.Agent, target string) {
	defender, ok := w.agents[target]
	if !ok || defender.Name == challenger.Name {
		return
	}

	power := w.rng.Intn(10) + 1 + challenger.Level
	defenderPower := w.rng.Intn(10) + 1 + defender.Level
	w.stats.Battles++

	if power > defenderPower {
		winnings := min(defender.Wallet/10, battleWinCap)
		defender.Wallet -= winnings
		challenger.Wallet += winnings
		challenger.Reputation++
		w.chatLog.Append(w.tick, challenger.Name,
			fmt.Sprintf("Defeated %s in battle! Won %dg!", defender.Name, winnings),
			chat.KindBattle)
		return
	}

	loss := min(challenger.Wallet/10, battleLossCap)
	challenger.Wallet -= loss
	defender.Wallet += loss
	w.chatLog.Append(w.tick, challenger.Name,
		fmt.Sprintf("Lost to %s! Lost %dg!", defender.Name, loss),
		chat.KindBattle)
}

// gainXP adds experience and processes level-ups: each time xp reaches
// level*10 the level rises, xp resets, and the level bonus is paid.
func (w *World) gainXP(a *agents.Agent, xp int) {
	a.XP += xp
	if a.XP >= a.LevelUpThreshold() {
		a.Level++
		a.XP = 0
		a.Wallet += w.cfg.LevelBonus
		w.stats.LevelUps++
		w.chatLog.Append(w.tick, a.Name,
			fmt.Sprintf("Leveled up to %d! Gained %dg bonus!", a.Level, w.cfg.LevelBonus),
			chat.KindLevelUp)
	}
}
