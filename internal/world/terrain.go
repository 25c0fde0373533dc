// Terrain flavor generation using layered simplex noise.
// The flavor layer never blocks movement — it weights loot tables and
// ambient event text, nothing more.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain classifies the flavor of a grid tile.
type Terrain uint8

const (
	TerrainGrass Terrain = iota
	TerrainTallGrass
	TerrainWater
	TerrainTown
	TerrainCave
)

// TerrainName returns a human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrass:
		return "grass"
	case TerrainTallGrass:
		return "tall grass"
	case TerrainWater:
		return "water"
	case TerrainTown:
		return "town"
	case TerrainCave:
		return "cave"
	}
	return "unknown"
}

// Grid holds the terrain flavor for every tile inside a bounding rect.
type Grid struct {
	Bounds Rect
	tiles  []Terrain
}

// GenerateGrid derives a deterministic terrain grid from a seed.
// Two independent noise layers: elevation picks water/cave extremes,
// moisture separates grass from tall grass. Octaves follow the usual
// fractal layering so neighboring tiles stay coherent.
func GenerateGrid(bounds Rect, seed int64) *Grid {
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	g := &Grid{
		Bounds: bounds,
		tiles:  make([]Terrain, bounds.Width()*bounds.Height()),
	}

	for y := bounds.MinY; y <= bounds.MaxY; y++ {
		for x := bounds.MinX; x <= bounds.MaxX; x++ {
			elev := octaveNoise(elevNoise, float64(x), float64(y), 3, 0.18, 0.5)
			moist := octaveNoise(moistNoise, float64(x), float64(y), 2, 0.25, 0.5)

			var t Terrain
			switch {
			case elev < 0.22:
				t = TerrainWater
			case elev > 0.82:
				t = TerrainCave
			case elev > 0.45 && elev < 0.55 && moist < 0.35:
				t = TerrainTown
			case moist > 0.55:
				t = TerrainTallGrass
			default:
				t = TerrainGrass
			}
			g.tiles[g.index(Coord{x, y})] = t
		}
	}

	return g
}

// At returns the terrain at c. Coordinates outside the bounds are clamped
// first, mirroring how movement itself is clamped.
func (g *Grid) At(c Coord) Terrain {
	return g.tiles[g.index(g.Bounds.Clamp(c))]
}

// Counts tallies tiles per terrain type.
func (g *Grid) Counts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range g.tiles {
		counts[t]++
	}
	return counts
}

func (g *Grid) index(c Coord) int {
	return (c.Y-g.Bounds.MinY)*g.Bounds.Width() + (c.X - g.Bounds.MinX)
}

// octaveNoise layers multiple noise frequencies into fractal noise in [0,1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
