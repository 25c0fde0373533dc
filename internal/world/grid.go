// Package world provides the overworld grid, movement directions, and the
// terrain flavor layer the simulation runs on.
package world

// Coord is a tile position on the overworld grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan returns the Manhattan distance between two coordinates.
func (c Coord) Manhattan(o Coord) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Adjacent reports whether o is within one tile of c on both axes
// (Chebyshev distance ≤ 1). A tile is adjacent to itself.
func (c Coord) Adjacent(o Coord) bool {
	return abs(c.X-o.X) <= 1 && abs(c.Y-o.Y) <= 1
}

// Direction is a cardinal movement direction.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists all four directions in a fixed order.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// String returns the lowercase wire name of the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "unknown"
}

// ParseDirection maps a wire name back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	}
	return 0, false
}

// Perpendicular returns a direction at a right angle to d. Used by the
// anti-oscillation heuristic when an agent keeps repeating the same move.
func (d Direction) Perpendicular() Direction {
	switch d {
	case DirUp, DirDown:
		return DirLeft
	default:
		return DirUp
	}
}

// Step returns the coordinate one tile from c in direction d. Screen
// coordinates: y grows downward, matching the overworld WRAM layout.
func (c Coord) Step(d Direction) Coord {
	switch d {
	case DirUp:
		return Coord{c.X, c.Y - 1}
	case DirDown:
		return Coord{c.X, c.Y + 1}
	case DirLeft:
		return Coord{c.X - 1, c.Y}
	case DirRight:
		return Coord{c.X + 1, c.Y}
	}
	return c
}

// Rect is an inclusive bounding rectangle.
type Rect struct {
	MinX int `json:"min_x" yaml:"min_x"`
	MinY int `json:"min_y" yaml:"min_y"`
	MaxX int `json:"max_x" yaml:"max_x"`
	MaxY int `json:"max_y" yaml:"max_y"`
}

// Contains reports whether c lies inside the rectangle.
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.MinX && c.X <= r.MaxX && c.Y >= r.MinY && c.Y <= r.MaxY
}

// Clamp returns c moved to the nearest coordinate inside the rectangle.
func (r Rect) Clamp(c Coord) Coord {
	if c.X < r.MinX {
		c.X = r.MinX
	}
	if c.X > r.MaxX {
		c.X = r.MaxX
	}
	if c.Y < r.MinY {
		c.Y = r.MinY
	}
	if c.Y > r.MaxY {
		c.Y = r.MaxY
	}
	return c
}

// Width returns the number of columns the rectangle spans.
func (r Rect) Width() int { return r.MaxX - r.MinX + 1 }

// Height returns the number of rows the rectangle spans.
func (r Rect) Height() int { return r.MaxY - r.MinY + 1 }

// NearEdge reports whether c is within margin tiles of any boundary.
func (r Rect) NearEdge(c Coord, margin int) bool {
	return c.X-r.MinX < margin || r.MaxX-c.X < margin ||
		c.Y-r.MinY < margin || r.MaxY-c.Y < margin
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
