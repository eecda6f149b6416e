package parameter

import "time"

// Wave Pacing
const (
	// WaveBaseCount is the enemy count of wave zero
	WaveBaseCount = 8

	// WaveCountPerWave is added per wave number
	WaveCountPerWave = 2

	// WaveEliteEvery marks every Nth wave as elite
	WaveEliteEvery = 5

	// WaveCadence is the spawn interval of regular waves
	WaveCadence = 800 * time.Millisecond

	// WaveEliteCadence is the spawn interval of elite waves
	WaveEliteCadence = 400 * time.Millisecond

	// WaveCompleteDelay is the pause between a cleared wave and the next
	WaveCompleteDelay = 3000 * time.Millisecond

	// WaveHPScale is the hp multiplier gained per wave
	WaveHPScale = 0.1

	// WaveSpeedScale is the speed multiplier gained per wave
	WaveSpeedScale = 0.05

	// SpawnFallbackRadius is the ring radius around the player when terrain is absent
	SpawnFallbackRadius = 600.0
)
