package parameter

// Terrain Generation
const (
	// TerrainWidth is the default grid width in tiles
	TerrainWidth = 50

	// TerrainHeight is the default grid height in tiles
	TerrainHeight = 50

	// TerrainTileSize is the world-space edge length of one tile
	TerrainTileSize = 64.0

	// TerrainRooms is the number of seed rooms carved before the fill
	TerrainRooms = 8

	// TerrainRoomMin is the smallest room side in tiles
	TerrainRoomMin = 6

	// TerrainRoomSpan is the random extent added to TerrainRoomMin (exclusive)
	TerrainRoomSpan = 8

	// TerrainRoomPad keeps rooms away from the grid edge
	TerrainRoomPad = 2

	// TerrainFillPadding is the border excluded from the stochastic fill
	TerrainFillPadding = 5

	// TerrainFillChance is the per-cell Ground probability of the fill pass
	TerrainFillChance = 0.45

	// TerrainSmoothPasses is the number of cellular automaton passes
	TerrainSmoothPasses = 4

	// TerrainSmoothThreshold is the neighbor count that keeps a cell unchanged
	TerrainSmoothThreshold = 4

	// TerrainWallChance is the fraction of Ground promoted to Wall
	TerrainWallChance = 0.10

	// TerrainWallHeightMin is the lowest visual wall height
	TerrainWallHeightMin = 40.0

	// TerrainWallHeightMax is the highest visual wall height
	TerrainWallHeightMax = 60.0

	// TerrainNoiseScale maps tile coordinates into perlin space
	TerrainNoiseScale = 0.15

	// TerrainMaxAttempts bounds regeneration with derived seeds before the fallback room
	TerrainMaxAttempts = 8

	// TerrainFallbackRoom is the side of the guaranteed centre room
	TerrainFallbackRoom = 8
)
