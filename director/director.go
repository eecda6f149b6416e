// Package director decides what spawns, when and where, in fixed-count waves
package director

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/status"
	"github.com/lixenwraith/arena-core/vmath"
)

// State is the wave lifecycle
type State uint8

const (
	StateIdle     State = iota
	StateSpawning       // Wave budget being spent at cadence
	StateCombat         // Budget spent, waiting for the field to clear
	StateComplete       // Field clear, waiting for the next wave
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateCombat:
		return "combat"
	case StateComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Population is the pooled enemy set the director spawns into
type Population interface {
	Acquire(kind entity.Kind) (*entity.Entity, bool)
	Release(e *entity.Entity) bool
	ActiveCount() int
}

// Placer yields spawn positions; terrain.Map satisfies it
type Placer interface {
	RandomWalkableTile() (vmath.Vec2, error)
}

// Primer initializes per-entity behavior state after configuration
type Primer interface {
	Prime(e *entity.Entity)
}

// Config holds wave pacing and scaling
type Config struct {
	BaseCount     int
	PerWave       int
	EliteEvery    int
	Cadence       time.Duration
	EliteCadence  time.Duration
	CompleteDelay time.Duration

	HPScale    float64 // HP multiplier gained per wave
	SpeedScale float64 // Speed multiplier gained per wave

	FallbackRadius float64 // Ring around the anchor when no terrain is set
}

// DefaultConfig returns standard pacing
func DefaultConfig() Config {
	return Config{
		BaseCount:      parameter.WaveBaseCount,
		PerWave:        parameter.WaveCountPerWave,
		EliteEvery:     parameter.WaveEliteEvery,
		Cadence:        parameter.WaveCadence,
		EliteCadence:   parameter.WaveEliteCadence,
		CompleteDelay:  parameter.WaveCompleteDelay,
		HPScale:        parameter.WaveHPScale,
		SpeedScale:     parameter.WaveSpeedScale,
		FallbackRadius: parameter.SpawnFallbackRadius,
	}
}

// Option configures a Director
type Option func(*Director)

func WithLogger(log *zap.SugaredLogger) Option { return func(d *Director) { d.log = log } }
func WithPlacer(p Placer) Option               { return func(d *Director) { d.placer = p } }
func WithPrimer(p Primer) Option               { return func(d *Director) { d.primer = p } }
func WithMetrics(r *status.Registry) Option    { return func(d *Director) { d.metrics = r } }
func WithConfig(cfg Config) Option             { return func(d *Director) { d.cfg = cfg } }

// Director runs the wave state machine
type Director struct {
	cfg      Config
	schedule *Schedule
	bestiary *entity.Bestiary
	pop      Population
	placer   Placer
	primer   Primer
	bus      *event.Bus
	rng      *rand.Rand
	log      *zap.SugaredLogger
	metrics  *status.Registry

	state       State
	wave        int
	remaining   int // Spawns left in the current wave
	timer       time.Duration
	bossPending bool
	difficulty  float64
	elapsed     time.Duration

	anchor    vmath.Vec2
	hasAnchor bool

	statSpawned *atomic.Int64
	statSkipped *atomic.Int64
	statWave    *atomic.Int64
}

// New creates an idle director
func New(pop Population, bestiary *entity.Bestiary, schedule *Schedule, bus *event.Bus, rng *rand.Rand, opts ...Option) *Director {
	d := &Director{
		cfg:        DefaultConfig(),
		schedule:   schedule,
		bestiary:   bestiary,
		pop:        pop,
		bus:        bus,
		rng:        rng,
		difficulty: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = zap.NewNop().Sugar()
	}
	if d.schedule == nil {
		d.schedule = DefaultSchedule()
	}
	if d.bestiary == nil {
		d.bestiary = entity.DefaultBestiary()
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if d.cfg.EliteEvery <= 0 {
		d.cfg.EliteEvery = parameter.WaveEliteEvery
	}
	if d.cfg.Cadence <= 0 {
		d.cfg.Cadence = parameter.WaveCadence
	}
	if d.cfg.EliteCadence <= 0 {
		d.cfg.EliteCadence = parameter.WaveEliteCadence
	}
	d.statSpawned = d.metrics.Counter("director.spawned")
	d.statSkipped = d.metrics.Counter("director.skipped")
	d.statWave = d.metrics.Counter("director.wave")
	return d
}

func (d *Director) State() State             { return d.state }
func (d *Director) Wave() int                { return d.wave }
func (d *Director) Remaining() int           { return d.remaining }
func (d *Director) Difficulty() float64      { return d.difficulty }
func (d *Director) Elapsed() time.Duration   { return d.elapsed }
func (d *Director) IsElite(wave int) bool    { return wave > 0 && wave%d.cfg.EliteEvery == 0 }
func (d *Director) SetPlacer(p Placer)       { d.placer = p }
func (d *Director) SetAnchor(pos vmath.Vec2) { d.anchor, d.hasAnchor = pos, true }
func (d *Director) WaveSize(wave int) int    { return d.cfg.BaseCount + d.cfg.PerWave*wave }

func (d *Director) cadence(elite bool) time.Duration {
	if elite {
		return d.cfg.EliteCadence
	}
	return d.cfg.Cadence
}

// Start begins wave 1
func (d *Director) Start() {
	d.StartAt(1)
}

// StartAt begins the given wave immediately
func (d *Director) StartAt(wave int) {
	if wave < 1 {
		wave = 1
	}
	d.startWave(wave)
}

// Stop cancels pending spawns and timers; the caller releases live entities
func (d *Director) Stop() {
	d.state = StateIdle
	d.remaining = 0
	d.timer = 0
	d.bossPending = false
}

// Update advances the wave state machine by dt
func (d *Director) Update(dt time.Duration) {
	if d.state == StateIdle {
		return
	}
	d.elapsed += dt

	switch d.state {
	case StateSpawning:
		elite := d.IsElite(d.wave)
		cadence := d.cadence(elite)
		d.timer += dt
		for d.remaining > 0 && d.timer >= cadence {
			d.timer -= cadence
			if !d.spawnOne(elite) {
				// Beat consumed; retry on the next one
				d.timer %= cadence
				break
			}
			d.remaining--
		}
		if d.remaining == 0 {
			d.state = StateCombat
			d.timer = 0
			d.log.Debugw("wave budget spent", "wave", d.wave)
		}

	case StateCombat:
		if d.pop.ActiveCount() == 0 {
			d.state = StateComplete
			d.timer = 0
			d.log.Infow("wave complete", "wave", d.wave, "elapsed", d.elapsed)
			d.emit(event.EventWaveComplete, &event.WaveCompletePayload{Wave: d.wave})
		}

	case StateComplete:
		d.timer += dt
		if d.timer >= d.cfg.CompleteDelay {
			d.startWave(d.wave + 1)
		}
	}
}

func (d *Director) startWave(wave int) {
	elite := d.IsElite(wave)
	d.wave = wave
	d.remaining = d.WaveSize(wave)
	d.bossPending = elite
	d.state = StateSpawning
	d.timer = 0

	if m := 1 + d.cfg.HPScale*float64(wave); m > d.difficulty {
		d.difficulty = m
	}
	d.statWave.Store(int64(wave))

	d.log.Infow("wave start", "wave", wave, "elite", elite, "count", d.remaining)
	d.emit(event.EventWaveStart, &event.WaveStartPayload{Wave: wave, IsElite: elite, Count: d.remaining})
}

// spawnOne places and configures one enemy; false when the request was dropped
func (d *Director) spawnOne(elite bool) bool {
	pos, ok := d.place()
	if !ok {
		d.statSkipped.Add(1)
		return false
	}

	if d.bossPending {
		d.bossPending = false
		// Boss pool holds one; a live boss turns this beat into a regular spawn
		if e, ok := d.pop.Acquire(entity.KindBoss); ok {
			d.configure(e, d.bestiary.Lookup(entity.KindBoss), pos, d.modifiers(false, true))
			d.log.Infow("boss spawned", "wave", d.wave, "id", e.ID)
			return true
		}
	}

	arch := d.bestiary.Lookup(d.schedule.TableFor(d.wave).Draw(d.rng))
	e, ok := d.pop.Acquire(arch.Kind)
	if !ok {
		d.statSkipped.Add(1)
		return false
	}
	d.configure(e, arch, pos, d.modifiers(elite, false))
	return true
}

func (d *Director) configure(e *entity.Entity, arch entity.Archetype, pos vmath.Vec2, mods entity.Modifiers) {
	e.Configure(arch, pos, mods)
	if d.primer != nil {
		d.primer.Prime(e)
	}
	d.statSpawned.Add(1)
}

func (d *Director) modifiers(elite, boss bool) entity.Modifiers {
	m := entity.Modifiers{
		HP:     1 + d.cfg.HPScale*float64(d.wave),
		Speed:  1 + d.cfg.SpeedScale*float64(d.wave),
		Radius: 1,
	}
	switch {
	case boss:
		m.HP *= parameter.BossHPMultiplier
		m.Radius *= parameter.BossRadiusMultiplier
		m.Boss = true
	case elite:
		m.HP *= parameter.EliteHPMultiplier
		m.Speed *= parameter.EliteSpeedMultiplier
		m.Radius *= parameter.EliteRadiusMultiplier
		m.Elite = true
	}
	return m
}

// place returns a random Ground tile centre when terrain is set, otherwise a
// point on the fallback ring around the anchor; false means skip
func (d *Director) place() (vmath.Vec2, bool) {
	if d.placer != nil {
		pos, err := d.placer.RandomWalkableTile()
		if err != nil {
			return vmath.Vec2{}, false
		}
		return pos, true
	}
	if !d.hasAnchor {
		return vmath.Vec2{}, false
	}
	angle := d.rng.Float64() * 2 * math.Pi
	return d.anchor.Add(vmath.FromAngle(angle).Scale(d.cfg.FallbackRadius)), true
}

func (d *Director) emit(t event.EventType, payload any) {
	if d.bus != nil {
		d.bus.Emit(event.GameEvent{Type: t, Payload: payload})
	}
}
