package terrain

import (
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/lixenwraith/arena-core/parameter"
)

// seedStride separates derived seeds of regeneration attempts
const seedStride = 7919

type Config struct {
	Width, Height int

	Rooms    int // Seed rooms carved before the fill
	RoomMin  int // Smallest room side
	RoomSpan int // Random extent added to RoomMin (exclusive)
	RoomPad  int // Gap between rooms and the grid edge

	Padding    int     // Border excluded from the stochastic fill
	FillChance float64 // Ground probability per interior cell
	Passes     int     // Smoothing passes

	WallChance    float64 // Fraction of Ground promoted to Wall
	WallHeightMin float64
	WallHeightMax float64
	NoiseScale    float64

	TileSize float64

	// Bridges joins consecutive room centres with corridors laid over Void
	Bridges bool

	// MaxAttempts bounds regeneration with derived seeds before the fallback room
	MaxAttempts int

	Seed int64 // Optional (0 = Random)
}

// DefaultConfig returns the standard 50x50 sector
func DefaultConfig() Config {
	return Config{
		Width:         parameter.TerrainWidth,
		Height:        parameter.TerrainHeight,
		Rooms:         parameter.TerrainRooms,
		RoomMin:       parameter.TerrainRoomMin,
		RoomSpan:      parameter.TerrainRoomSpan,
		RoomPad:       parameter.TerrainRoomPad,
		Padding:       parameter.TerrainFillPadding,
		FillChance:    parameter.TerrainFillChance,
		Passes:        parameter.TerrainSmoothPasses,
		WallChance:    parameter.TerrainWallChance,
		WallHeightMin: parameter.TerrainWallHeightMin,
		WallHeightMax: parameter.TerrainWallHeightMax,
		NoiseScale:    parameter.TerrainNoiseScale,
		TileSize:      parameter.TerrainTileSize,
		Bridges:       true,
		MaxAttempts:   parameter.TerrainMaxAttempts,
	}
}

// Generate builds a map, retrying with derived seeds while the layout has no Ground
// After MaxAttempts the last layout gets a guaranteed centre room
func Generate(cfg Config) *Map {
	if cfg.Width < 3 {
		cfg.Width = 3
	}
	if cfg.Height < 3 {
		cfg.Height = 3
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = parameter.TerrainTileSize
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var (
		grid  [][]TileType
		rooms []Room
		rng   *rand.Rand
	)
	for attempt := 0; attempt < attempts; attempt++ {
		rng = rand.New(rand.NewSource(seed + int64(attempt)*seedStride))
		grid, rooms = layout(cfg, rng)
		if countType(grid, Ground) > 0 {
			m := build(cfg, grid, rooms, seed, rng)
			m.attempts = attempt + 1
			return m
		}
	}

	room := fallbackRoom(cfg.Width, cfg.Height)
	carve(grid, room)
	rooms = append(rooms, room)
	m := build(cfg, grid, rooms, seed, rng)
	m.attempts = attempts
	m.fallback = true
	return m
}

// layout runs rooms -> fill -> smoothing -> bridges and returns the raw grid
func layout(cfg Config, rng *rand.Rand) ([][]TileType, []Room) {
	grid := newGrid(cfg.Width, cfg.Height)

	rooms := carveRooms(grid, cfg, rng)
	fill(grid, cfg.Padding, cfg.FillChance, rng)

	for k := 0; k < cfg.Passes; k++ {
		grid = smooth(grid)
	}

	if cfg.Bridges {
		for i := 1; i < len(rooms); i++ {
			bridge(grid, rooms[i-1].Center(), rooms[i].Center())
		}
	}
	return grid, rooms
}

// build promotes walls, assigns heights and freezes the grid into a Map
func build(cfg Config, grid [][]TileType, rooms []Room, seed int64, rng *rand.Rand) *Map {
	noise := perlin.NewPerlin(2, 2, 3, seed)
	rows, cols := len(grid), len(grid[0])

	m := &Map{
		cfg:    cfg,
		width:  cols,
		height: rows,
		tiles:  make([]Tile, rows*cols),
		rooms:  rooms,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed ^ 0x5eed)),
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t := grid[y][x]
			tile := Tile{X: x, Y: y, Type: t}
			if t == Ground && rng.Float64() < cfg.WallChance {
				tile.Type = Wall
				tile.Collider = true
				tile.Height = wallHeight(noise, cfg, x, y)
			}
			m.tiles[y*cols+x] = tile
		}
	}
	m.index()

	// Promotion must leave at least one Ground tile
	if len(m.ground) == 0 && len(m.walls) > 0 {
		i := m.walls[0]
		m.tiles[i].Type = Ground
		m.tiles[i].Collider = false
		m.tiles[i].Height = 0
		m.index()
	}
	return m
}

func wallHeight(noise *perlin.Perlin, cfg Config, x, y int) float64 {
	n := noise.Noise2D(float64(x)*cfg.NoiseScale, float64(y)*cfg.NoiseScale)
	f := (n + 1) / 2
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return cfg.WallHeightMin + (cfg.WallHeightMax-cfg.WallHeightMin)*f
}

// --- Core Algorithms ---

func carveRooms(grid [][]TileType, cfg Config, rng *rand.Rand) []Room {
	rows, cols := len(grid), len(grid[0])
	rooms := make([]Room, 0, cfg.Rooms)

	for i := 0; i < cfg.Rooms; i++ {
		w := roomSide(cfg, cols, rng)
		h := roomSide(cfg, rows, rng)
		x := cfg.RoomPad + randSpan(rng, cols-w-2*cfg.RoomPad)
		y := cfg.RoomPad + randSpan(rng, rows-h-2*cfg.RoomPad)

		r := Room{X: x, Y: y, W: w, H: h}
		carve(grid, r)
		rooms = append(rooms, r)
	}
	return rooms
}

func roomSide(cfg Config, limit int, rng *rand.Rand) int {
	side := cfg.RoomMin + randSpan(rng, cfg.RoomSpan)
	if bound := limit - 2*cfg.RoomPad; side > bound {
		side = bound
	}
	if side < 1 {
		side = 1
	}
	return side
}

// randSpan returns rng.Intn(n), or 0 when n <= 0
func randSpan(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.Intn(n)
}

func carve(grid [][]TileType, r Room) {
	rows, cols := len(grid), len(grid[0])
	for y := r.Y; y < r.Y+r.H && y < rows; y++ {
		if y < 0 {
			continue
		}
		for x := r.X; x < r.X+r.W && x < cols; x++ {
			if x < 0 {
				continue
			}
			grid[y][x] = Ground
		}
	}
}

// fill turns interior Void into Ground with probability chance
func fill(grid [][]TileType, padding int, chance float64, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])
	for y := padding; y < rows-padding; y++ {
		for x := padding; x < cols-padding; x++ {
			if grid[y][x] == Void && rng.Float64() < chance {
				grid[y][x] = Ground
			}
		}
	}
}

// smooth runs one cellular automaton pass over interior cells
// More than 4 non-Void neighbors: Ground; fewer than 4: Void; exactly 4: unchanged
func smooth(grid [][]TileType) [][]TileType {
	rows, cols := len(grid), len(grid[0])
	next := cloneGrid(grid)

	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			n := solidNeighbors(grid, x, y)
			switch {
			case n > parameter.TerrainSmoothThreshold:
				next[y][x] = Ground
			case n < parameter.TerrainSmoothThreshold:
				next[y][x] = Void
			}
		}
	}
	return next
}

// solidNeighbors counts non-Void cells among the 8 neighbors of (x, y)
func solidNeighbors(grid [][]TileType, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if grid[y+dy][x+dx] != Void {
				n++
			}
		}
	}
	return n
}

// bridge lays an L-shaped corridor from a to b, converting Void only
func bridge(grid [][]TileType, a, b Point) {
	stepX := 1
	if b.X < a.X {
		stepX = -1
	}
	for x := a.X; x != b.X; x += stepX {
		layBridge(grid, x, a.Y)
	}
	stepY := 1
	if b.Y < a.Y {
		stepY = -1
	}
	for y := a.Y; y != b.Y+stepY; y += stepY {
		layBridge(grid, b.X, y)
	}
}

func layBridge(grid [][]TileType, x, y int) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[0]) {
		return
	}
	if grid[y][x] == Void {
		grid[y][x] = Bridge
	}
}

func fallbackRoom(cols, rows int) Room {
	side := parameter.TerrainFallbackRoom
	w, h := min(side, cols-2), min(side, rows-2)
	return Room{X: (cols - w) / 2, Y: (rows - h) / 2, W: w, H: h}
}

// --- Helpers ---

func newGrid(cols, rows int) [][]TileType {
	grid := make([][]TileType, rows)
	for i := range grid {
		grid[i] = make([]TileType, cols)
	}
	return grid
}

func cloneGrid(grid [][]TileType) [][]TileType {
	next := make([][]TileType, len(grid))
	for i := range grid {
		next[i] = append([]TileType(nil), grid[i]...)
	}
	return next
}

func countType(grid [][]TileType, t TileType) int {
	n := 0
	for _, row := range grid {
		for _, c := range row {
			if c == t {
				n++
			}
		}
	}
	return n
}
