package economy

import (
	"math/rand"
	"testing"
)

func TestPerturbRespectsFloor(t *testing.T) {
	m := NewMarket()
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		m.Perturb(rng)
		for kind, price := range m.Prices {
			if price < PriceFloor {
				t.Fatalf("iteration %d: %s price %d fell below floor %d", i, kind, price, PriceFloor)
			}
		}
	}
}

func TestPerturbStepBounded(t *testing.T) {
	m := NewMarket()
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 200; i++ {
		before := make(map[ItemKind]int, len(m.Prices))
		for k, v := range m.Prices {
			before[k] = v
		}
		m.Perturb(rng)
		for k, v := range m.Prices {
			delta := v - before[k]
			// A clamped price can jump back up to the floor, but an
			// unclamped step is always within -2..+5.
			if before[k] > PriceFloor+2 && (delta < -2 || delta > 5) {
				t.Fatalf("%s moved by %d in one step", k, delta)
			}
		}
	}
}

func TestPerturbDeterministicForSeed(t *testing.T) {
	m1, m2 := NewMarket(), NewMarket()
	r1 := rand.New(rand.NewSource(7))
	r2 := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		m1.Perturb(r1)
		m2.Perturb(r2)
		for _, kind := range AllItemKinds {
			if m1.Price(kind) != m2.Price(kind) {
				t.Fatalf("iteration %d: price of %s diverged with same seed: %d vs %d",
					i, kind, m1.Price(kind), m2.Price(kind))
			}
		}
	}
}

func TestQuoteJitter(t *testing.T) {
	m := NewMarket()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		q := m.Quote(ItemPotion, rng)
		base := m.Price(ItemPotion)
		if q < base-5 || q > base+5 {
			t.Fatalf("quote %d outside %d±5", q, base)
		}
	}
}

func TestOpeningPrices(t *testing.T) {
	m := NewMarket()
	want := map[ItemKind]int{
		ItemPotion:     20,
		ItemPokeball:   50,
		ItemGoldNugget: 100,
		ItemRareCandy:  200,
		ItemLandDeed:   150,
		ItemMysteryBox: 75,
	}
	for kind, price := range want {
		if m.Price(kind) != price {
			t.Errorf("%s opens at %d, want %d", kind, m.Price(kind), price)
		}
	}
}
