package world

import (
	"math/rand"
	"testing"
)

func TestClampStaysInside(t *testing.T) {
	r := Rect{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11}
	rng := rand.New(rand.NewSource(7))

	pos := Coord{6, 4}
	for i := 0; i < 1000; i++ {
		d := Directions[rng.Intn(len(Directions))]
		pos = r.Clamp(pos.Step(d))
		if !r.Contains(pos) {
			t.Fatalf("step %d: position %+v escaped bounds %+v", i, pos, r)
		}
	}
}

func TestClampCorners(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 9, MaxY: 9}
	cases := []struct {
		in, want Coord
	}{
		{Coord{-5, -5}, Coord{0, 0}},
		{Coord{20, 3}, Coord{9, 3}},
		{Coord{3, 20}, Coord{3, 9}},
		{Coord{5, 5}, Coord{5, 5}},
	}
	for _, tc := range cases {
		if got := r.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	for _, d := range Directions {
		parsed, ok := ParseDirection(d.String())
		if !ok || parsed != d {
			t.Errorf("round trip failed for %v", d)
		}
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Error("expected parse failure for unknown direction")
	}
}

func TestManhattanAndAdjacent(t *testing.T) {
	a := Coord{4, 7}
	b := Coord{6, 5}
	if got := a.Manhattan(b); got != 4 {
		t.Errorf("Manhattan = %d, want 4", got)
	}
	if !a.Adjacent(Coord{5, 8}) {
		t.Error("diagonal neighbor should be adjacent")
	}
	if a.Adjacent(b) {
		t.Error("distance-4 coordinate should not be adjacent")
	}
}

func TestNearEdge(t *testing.T) {
	r := Rect{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11}
	if !r.NearEdge(Coord{4, 7}, 2) {
		t.Error("left border should be near edge")
	}
	if r.NearEdge(Coord{7, 7}, 2) {
		t.Error("center should not be near edge")
	}
}

func TestGenerateGridDeterministic(t *testing.T) {
	bounds := Rect{MinX: 0, MinY: 0, MaxX: 15, MaxY: 15}
	g1 := GenerateGrid(bounds, 42)
	g2 := GenerateGrid(bounds, 42)

	for y := bounds.MinY; y <= bounds.MaxY; y++ {
		for x := bounds.MinX; x <= bounds.MaxX; x++ {
			c := Coord{x, y}
			if g1.At(c) != g2.At(c) {
				t.Fatalf("same seed produced different terrain at %+v", c)
			}
		}
	}

	counts := g1.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != bounds.Width()*bounds.Height() {
		t.Errorf("terrain counts sum %d, want %d", total, bounds.Width()*bounds.Height())
	}
}

func TestGridAtClampsOutside(t *testing.T) {
	bounds := Rect{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11}
	g := GenerateGrid(bounds, 1)
	// Out-of-bounds lookups must not panic; they clamp like movement does.
	_ = g.At(Coord{-100, 300})
}
