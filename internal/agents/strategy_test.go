package agents

import (
	"math/rand"
	"testing"

	"github.com/talgya/aethersync/internal/economy"
	"github.com/talgya/aethersync/internal/world"
)

// stubView is a minimal WorldView for strategy tests.
type stubView struct {
	bounds    world.Rect
	nearest   *Agent
	richest   *Agent
	random    *Agent
	landPrice int
}

func (v stubView) Bounds() world.Rect            { return v.bounds }
func (v stubView) Nearest(*Agent) *Agent         { return v.nearest }
func (v stubView) Richest(string) *Agent         { return v.richest }
func (v stubView) RandomOther(string) *Agent     { return v.random }
func (v stubView) LandPrice() int                { return v.landPrice }

func testBounds() world.Rect {
	return world.Rect{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11}
}

func TestExplorerTurnsAwayFromEdge(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := stubView{bounds: testBounds(), landPrice: 150}

	a := &Agent{Name: "Koolie", Personality: PersonalityExplorer, Position: world.Coord{X: 7, Y: 4}, Level: 1}
	act := Decide(a, v, rng)
	mv, ok := act.(Move)
	if !ok {
		t.Fatalf("expected Move, got %T", act)
	}
	if mv.Dir != world.DirDown {
		t.Errorf("at top edge explorer moved %v, want down", mv.Dir)
	}

	a.Position = world.Coord{X: 11, Y: 7}
	act = Decide(a, v, rng)
	if mv := act.(Move); mv.Dir != world.DirLeft {
		t.Errorf("at right edge explorer moved %v, want left", mv.Dir)
	}
}

func TestGathererBuysLandWhenWealthy(t *testing.T) {
	v := stubView{bounds: testBounds(), landPrice: 150}
	a := &Agent{Name: "Scout-7", Personality: PersonalityGatherer, Position: world.Coord{X: 7, Y: 7}, Wallet: 200, Level: 1}

	// The gatherer searches 30% of the time, otherwise buys land while
	// it can afford to. Over many rolls both must occur and nothing else.
	rng := rand.New(rand.NewSource(5))
	sawSearch, sawBuy := false, false
	for i := 0; i < 100; i++ {
		switch Decide(a, v, rng).(type) {
		case Search:
			sawSearch = true
		case BuyLand:
			sawBuy = true
		default:
			t.Fatalf("wealthy gatherer produced unexpected action")
		}
	}
	if !sawSearch || !sawBuy {
		t.Errorf("expected both search and buy_land over 100 rolls (search=%v buy=%v)", sawSearch, sawBuy)
	}
}

func TestSocialApproachesNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	other := &Agent{Name: "HelpBot", Position: world.Coord{X: 10, Y: 7}}
	v := stubView{bounds: testBounds(), nearest: other, landPrice: 150}

	a := &Agent{Name: "Koolie", Personality: PersonalitySocial, Position: world.Coord{X: 5, Y: 7}, Level: 1}
	act := Decide(a, v, rng)
	mv, ok := act.(Move)
	if !ok {
		t.Fatalf("expected Move toward nearest, got %T", act)
	}
	if mv.Dir != world.DirRight {
		t.Errorf("social moved %v, want right", mv.Dir)
	}
}

func TestSocialInteractsWhenAdjacent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	other := &Agent{Name: "HelpBot", Position: world.Coord{X: 6, Y: 7}}
	v := stubView{bounds: testBounds(), nearest: other, landPrice: 150}
	a := &Agent{Name: "Koolie", Personality: PersonalitySocial, Position: world.Coord{X: 5, Y: 7}, Level: 1}

	sawSay, sawTrade := false, false
	for i := 0; i < 50; i++ {
		switch act := Decide(a, v, rng).(type) {
		case Say:
			sawSay = true
		case OfferTrade:
			if act.Target != "HelpBot" {
				t.Fatalf("trade target %q, want HelpBot", act.Target)
			}
			sawTrade = true
		default:
			t.Fatalf("adjacent social produced %T", act)
		}
	}
	if !sawSay || !sawTrade {
		t.Errorf("expected both say and trade over 50 rolls")
	}
}

func TestMerchantTradesWithRichestWhenStocked(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	rich := &Agent{Name: "Warrior-Z", Position: world.Coord{X: 8, Y: 8}, Wallet: 500}
	v := stubView{bounds: testBounds(), richest: rich, landPrice: 150}

	a := &Agent{
		Name: "Merchant-X", Personality: PersonalityMerchant,
		Position:  world.Coord{X: 7, Y: 8},
		Inventory: []economy.Item{{Kind: economy.ItemPotion, Quantity: 1, Owner: "Merchant-X", Value: 20}},
		Level:     1,
	}
	act := Decide(a, v, rng)
	trade, ok := act.(OfferTrade)
	if !ok {
		t.Fatalf("expected OfferTrade, got %T", act)
	}
	if trade.Target != "Warrior-Z" {
		t.Errorf("trade target %q, want Warrior-Z", trade.Target)
	}

	// Without inventory the merchant keeps approaching instead.
	a.Inventory = nil
	if _, ok := Decide(a, v, rng).(Move); !ok {
		t.Error("empty-handed merchant should move, not trade")
	}
}

func TestFighterChallengesAdjacent(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	foe := &Agent{Name: "Koolie", Position: world.Coord{X: 7, Y: 7}}
	v := stubView{bounds: testBounds(), random: foe, landPrice: 150}

	a := &Agent{Name: "Warrior-Z", Personality: PersonalityFighter, Position: world.Coord{X: 7, Y: 8}, Level: 1}
	act := Decide(a, v, rng)
	ch, ok := act.(Challenge)
	if !ok {
		t.Fatalf("expected Challenge, got %T", act)
	}
	if ch.Target != "Koolie" {
		t.Errorf("challenge target %q, want Koolie", ch.Target)
	}
}

func TestStrategiesWanderWhenAlone(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := stubView{bounds: testBounds(), landPrice: 150}

	for _, p := range []Personality{PersonalitySocial, PersonalityMerchant, PersonalityFighter} {
		a := &Agent{Name: "solo", Personality: p, Position: world.Coord{X: 7, Y: 7}, Level: 1}
		if _, ok := Decide(a, v, rng).(Move); !ok {
			t.Errorf("%s should wander when alone", p)
		}
	}
}

func TestAntiOscillation(t *testing.T) {
	a := &Agent{LastDir: world.DirUp, DirRepeat: 3}
	if got := steer(a, world.DirUp); got != world.DirUp.Perpendicular() {
		t.Errorf("steer after 3 repeats = %v, want perpendicular", got)
	}
	a.DirRepeat = 2
	if got := steer(a, world.DirUp); got != world.DirUp {
		t.Errorf("steer under threshold changed direction to %v", got)
	}
}

func TestParsePersonality(t *testing.T) {
	for _, p := range []Personality{
		PersonalityExplorer, PersonalityGatherer, PersonalitySocial,
		PersonalityMerchant, PersonalityFighter,
	} {
		got, ok := ParsePersonality(p.String())
		if !ok || got != p {
			t.Errorf("round trip failed for %s", p)
		}
	}
	if _, ok := ParsePersonality("bard"); ok {
		t.Error("expected parse failure for unknown personality")
	}
}
