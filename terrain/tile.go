package terrain

// TileType classifies one grid cell
type TileType uint8

const (
	Void   TileType = iota // Pit, not walkable, not blocking
	Ground                 // Walkable floor, valid spawn location
	Wall                   // Blocking obstacle with visual height
	Bridge                 // Walkable corridor over void, never a spawn location
)

func (t TileType) String() string {
	switch t {
	case Ground:
		return "ground"
	case Wall:
		return "wall"
	case Bridge:
		return "bridge"
	default:
		return "void"
	}
}

// Walkable reports floor-like tiles
func (t TileType) Walkable() bool {
	return t == Ground || t == Bridge
}

// Tile is one immutable cell of a generated map
type Tile struct {
	X, Y     int
	Type     TileType
	Height   float64 // Visual height, walls only
	Collider bool    // Blocking geometry present
}

// Point is a grid coordinate
type Point struct {
	X, Y int
}

// Room is a carved rectangular seed region
type Room struct {
	X, Y, W, H int
}

// Center returns the room's centre cell
func (r Room) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}
