package terrain

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/vmath"
)

// ErrNoWalkableTile is returned when a map holds no Ground tile
var ErrNoWalkableTile = errors.New("terrain: no walkable tile")

// Map is an immutable generated sector; tiles never change during a match
type Map struct {
	cfg    Config
	width  int
	height int
	tiles  []Tile // Row-major
	rooms  []Room
	ground []int // Indices of Ground tiles
	walls  []int // Indices of Wall tiles

	seed     int64
	attempts int
	fallback bool

	rng *rand.Rand
}

func (m *Map) index() {
	m.ground = m.ground[:0]
	m.walls = m.walls[:0]
	for i := range m.tiles {
		switch m.tiles[i].Type {
		case Ground:
			m.ground = append(m.ground, i)
		case Wall:
			m.walls = append(m.walls, i)
		}
	}
}

func (m *Map) Width() int        { return m.width }
func (m *Map) Height() int       { return m.height }
func (m *Map) TileSize() float64 { return m.cfg.TileSize }
func (m *Map) Seed() int64       { return m.seed }
func (m *Map) Attempts() int     { return m.attempts }
func (m *Map) Fallback() bool    { return m.fallback }
func (m *Map) GroundCount() int  { return len(m.ground) }
func (m *Map) Rooms() []Room     { return m.rooms }
func (m *Map) Tiles() []Tile     { return m.tiles }

// WorldSize returns the map extent in world units
func (m *Map) WorldSize() vmath.Vec2 {
	return vmath.V(float64(m.width)*m.cfg.TileSize, float64(m.height)*m.cfg.TileSize)
}

// Tile returns the tile at grid coordinates
func (m *Map) Tile(x, y int) (Tile, bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return Tile{}, false
	}
	return m.tiles[y*m.width+x], true
}

// TileAt returns the tile covering a world position
func (m *Map) TileAt(pos vmath.Vec2) (Tile, bool) {
	x := int(math.Floor(pos.X / m.cfg.TileSize))
	y := int(math.Floor(pos.Y / m.cfg.TileSize))
	return m.Tile(x, y)
}

// TileCenter converts grid coordinates to the world position of the tile centre
func (m *Map) TileCenter(x, y int) vmath.Vec2 {
	half := m.cfg.TileSize / 2
	return vmath.V(float64(x)*m.cfg.TileSize+half, float64(y)*m.cfg.TileSize+half)
}

// Walkable reports whether pos lies on Ground or Bridge
func (m *Map) Walkable(pos vmath.Vec2) bool {
	t, ok := m.TileAt(pos)
	return ok && t.Type.Walkable()
}

// Blocked reports whether the grid cell stops movement (wall or outside the map)
func (m *Map) Blocked(x, y int) bool {
	t, ok := m.Tile(x, y)
	return !ok || t.Collider
}

// BlockedAt reports whether a world position lies in a wall or outside the map
func (m *Map) BlockedAt(pos vmath.Vec2) bool {
	x := int(math.Floor(pos.X / m.cfg.TileSize))
	y := int(math.Floor(pos.Y / m.cfg.TileSize))
	return m.Blocked(x, y)
}

// Walls returns the wall tiles in row-major order
func (m *Map) Walls() []Tile {
	out := make([]Tile, len(m.walls))
	for i, idx := range m.walls {
		out[i] = m.tiles[idx]
	}
	return out
}

// RandomWalkableTile picks a Ground tile uniformly and returns its centre in world units
func (m *Map) RandomWalkableTile() (vmath.Vec2, error) {
	if len(m.ground) == 0 {
		return vmath.Vec2{}, ErrNoWalkableTile
	}
	idx := m.ground[m.rng.Intn(len(m.ground))]
	t := m.tiles[idx]
	return m.TileCenter(t.X, t.Y), nil
}

// ResolveMovement moves a circle by delta, sliding along blocking tiles
// Tries the full move, then X only, then Y only; returns pos when fully blocked
func (m *Map) ResolveMovement(pos, delta vmath.Vec2, radius float64) vmath.Vec2 {
	target := pos.Add(delta)
	if !m.collides(target, radius) {
		return target
	}

	targetX := vmath.V(pos.X+delta.X, pos.Y)
	if !m.collides(targetX, radius) {
		return targetX
	}

	targetY := vmath.V(pos.X, pos.Y+delta.Y)
	if !m.collides(targetY, radius) {
		return targetY
	}
	return pos
}

func (m *Map) collides(pos vmath.Vec2, radius float64) bool {
	size := m.cfg.TileSize
	world := m.WorldSize()
	if pos.X < radius || pos.Y < radius || pos.X > world.X-radius || pos.Y > world.Y-radius {
		return true
	}

	minX := int(math.Floor((pos.X - radius) / size))
	maxX := int(math.Floor((pos.X + radius) / size))
	minY := int(math.Floor((pos.Y - radius) / size))
	maxY := int(math.Floor((pos.Y + radius) / size))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !m.Blocked(x, y) {
				continue
			}
			lo := vmath.V(float64(x)*size, float64(y)*size)
			hi := vmath.V(lo.X+size, lo.Y+size)
			if vmath.CircleRect(pos, radius, lo, hi) {
				return true
			}
		}
	}
	return false
}
