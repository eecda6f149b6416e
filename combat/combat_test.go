package combat

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/extraction"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/pool"
	"github.com/lixenwraith/arena-core/vmath"
)

type fixture struct {
	r     *Resolver
	pop   *entity.Population
	shots *pool.Pool[*entity.Projectile]
	host  *entity.Player
	guest *entity.Player

	events map[event.EventType][]any
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	bus := event.NewBus(nil)
	f := &fixture{
		pop:    entity.DefaultPopulation(),
		shots:  entity.NewProjectilePool(parameter.PoolCapacityProjectile),
		host:   entity.NewPlayer(entity.PlayerHost, vmath.V(100, 100)),
		guest:  entity.NewPlayer(entity.PlayerGuest, vmath.V(3000, 3000)),
		events: make(map[event.EventType][]any),
	}
	for _, et := range []event.EventType{
		event.EventEnemyKilled, event.EventMatchOver, event.EventPowerupChanged, event.EventExtractionSuccess,
	} {
		bus.Subscribe(et, func(ev event.GameEvent) {
			f.events[ev.Type] = append(f.events[ev.Type], ev.Payload)
		})
	}
	f.r = New(f.pop, f.shots, bus, rand.New(rand.NewSource(1)), opts...)
	f.r.SetPlayers(f.host, f.guest)
	return f
}

func (f *fixture) spawn(t *testing.T, kind entity.Kind, pos vmath.Vec2) *entity.Entity {
	t.Helper()
	e, ok := f.pop.Acquire(kind)
	require.True(t, ok)
	e.Configure(entity.DefaultBestiary().Lookup(kind), pos, entity.Unscaled)
	return e
}

func (f *fixture) shoot(t *testing.T, at, heading vmath.Vec2, damage float64) *entity.Projectile {
	t.Helper()
	p, ok := f.shots.Acquire()
	require.True(t, ok)
	p.Launch(at, heading, parameter.ProjectileSpeed, parameter.ProjectileRadius, parameter.ProjectileTTL)
	p.Damage = damage
	p.Owner = entity.OwnerHost
	return p
}

func TestCritAverage(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	const (
		trials = 10000
		base   = 10.0
		crit   = 40.0
	)
	sum := 0.0
	for i := 0; i < trials; i++ {
		d, _ := RollDamage(base, crit, rng)
		sum += d
	}
	want := base * (1 + crit/100*(parameter.CritMultiplier-1))
	assert.InDelta(t, want, sum/trials, 0.15)

	d, isCrit := RollDamage(base, 0, rng)
	assert.Equal(t, base, d)
	assert.False(t, isCrit)
}

func TestContactDamageSequence(t *testing.T) {
	f := newFixture(t)

	want := []float64{70, 40, 10, 0}
	for i, hp := range want {
		e := f.spawn(t, entity.KindJelly, f.host.Body.Pos.Add(vmath.V(10, 0)))
		e.Damage = 30
		f.r.Resolve()
		assert.Equal(t, hp, f.r.Stats.HP, "contact %d", i+1)
		assert.False(t, e.Active(), "contact kills the enemy")
	}

	f.spawn(t, entity.KindJelly, f.host.Body.Pos)
	f.r.Resolve()
	assert.Equal(t, 0.0, f.r.Stats.HP)
	assert.True(t, f.r.Over())
	require.Len(t, f.events[event.EventMatchOver], 1)

	over := f.events[event.EventMatchOver][0].(*event.MatchOverPayload)
	assert.Equal(t, ReasonDeath, over.Reason)
	assert.False(t, f.r.End(ReasonQuit), "second end is a no-op")
	assert.Len(t, f.events[event.EventMatchOver], 1)
}

func TestContactUncredited(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, entity.KindJelly, f.host.Body.Pos)
	f.r.Resolve()

	assert.Equal(t, 0, f.r.Stats.Score)
	require.Len(t, f.events[event.EventEnemyKilled], 1)
	kill := f.events[event.EventEnemyKilled][0].(*event.EnemyKilledPayload)
	assert.Equal(t, CauseContact, kill.Cause)
}

func TestShieldBlocksContactDamage(t *testing.T) {
	f := newFixture(t)
	f.r.GrantPowerup(entity.PlayerHost, PowerupShield)

	e := f.spawn(t, entity.KindGolem, f.host.Body.Pos)
	f.r.Resolve()
	assert.Equal(t, parameter.PlayerHP, f.r.Stats.HP)
	assert.False(t, e.Active())

	// Dash i-frames protect the same way
	f.host.Shield = 0
	f.host.Dash(0)
	f.spawn(t, entity.KindGolem, f.host.Body.Pos)
	f.r.Resolve()
	assert.Equal(t, parameter.PlayerHP, f.r.Stats.HP)
}

func TestKillIffDamageAtLeastHP(t *testing.T) {
	tests := []struct {
		name   string
		hp     float64
		damage float64
		killed bool
	}{
		{"below", 20, 19.99, false},
		{"exact", 20, 20, true},
		{"above", 20, 25, true},
		{"tiny", 0.5, 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			pos := vmath.V(800, 800)
			e := f.spawn(t, entity.KindJelly, pos)
			e.HP = tt.hp
			p := f.shoot(t, pos, vmath.V(1, 0), tt.damage)

			f.r.Resolve()
			assert.Equal(t, !tt.killed, e.Active())
			assert.False(t, p.Active(), "projectile consumed")
		})
	}
}

func TestKnockbackAlongProjectileVelocity(t *testing.T) {
	f := newFixture(t)
	pos := vmath.V(800, 800)
	e := f.spawn(t, entity.KindGolem, pos)
	f.shoot(t, pos, vmath.V(3, 4), 1)

	f.r.Resolve()
	require.True(t, e.Active())
	assert.InDelta(t, parameter.KnockbackForce, e.Knock.Len(), 1e-9)
	assert.InDelta(t, 0.6, e.Knock.Normalize().X, 1e-9)
	assert.InDelta(t, 0.8, e.Knock.Normalize().Y, 1e-9)
	assert.Equal(t, parameter.FlashDuration, e.Flash)
}

func TestRecoveringChargerTakesDouble(t *testing.T) {
	f := newFixture(t)
	pos := vmath.V(800, 800)
	e := f.spawn(t, entity.KindCharger, pos)
	e.Phase = entity.DashRecover
	f.shoot(t, pos, vmath.V(1, 0), 10)

	f.r.Resolve()
	assert.Equal(t, 20.0, e.HP)
}

func TestHitStop(t *testing.T) {
	assert.Equal(t, parameter.HitStopLight, HitStop(20))
	assert.Equal(t, parameter.HitStopHeavy, HitStop(20.5))

	f := newFixture(t)
	pos := vmath.V(800, 800)
	f.spawn(t, entity.KindGolem, pos)
	f.shoot(t, pos, vmath.V(1, 0), 25)
	f.r.Resolve()
	require.Equal(t, parameter.HitStopHeavy, f.r.HitStop())

	assert.True(t, f.r.ConsumeHitStop(40*time.Millisecond))
	assert.True(t, f.r.ConsumeHitStop(40*time.Millisecond))
	assert.False(t, f.r.ConsumeHitStop(40*time.Millisecond))
}

func TestTetherKillsAcrossSegment(t *testing.T) {
	f := newFixture(t)
	f.guest.Body.Pos = vmath.V(500, 100)

	e := f.spawn(t, entity.KindJelly, vmath.V(300, 110))
	off := f.spawn(t, entity.KindJelly, vmath.V(300, 200))
	require.True(t, f.r.TetherActive())

	f.r.Resolve()
	assert.False(t, e.Active())
	assert.True(t, off.Active())
	assert.Equal(t, 10, f.r.Stats.Score)
	assert.Equal(t, 1, f.r.Stats.XP)

	kill := f.events[event.EventEnemyKilled][0].(*event.EnemyKilledPayload)
	assert.Equal(t, CauseTether, kill.Cause)
}

func TestTetherOutOfReach(t *testing.T) {
	f := newFixture(t)
	f.guest.Body.Pos = vmath.V(800, 100)
	e := f.spawn(t, entity.KindJelly, vmath.V(500, 100))

	assert.False(t, f.r.TetherActive())
	f.r.Resolve()
	assert.True(t, e.Active())

	f.r.ApplyUpgrade(entity.PlayerHost, UpgradeTether)
	assert.InDelta(t, 300*2.2*1.2, f.r.Mods.TetherLength(), 1e-9)
	assert.True(t, f.r.TetherActive())
}

func TestLevelProgression(t *testing.T) {
	s := NewStats()
	for i := 0; i < 9; i++ {
		assert.False(t, s.Credit(10, false))
	}
	assert.True(t, s.Credit(10, false))
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 0, s.XP)
	assert.Equal(t, 15, s.XPToNext)
	assert.Equal(t, 100, s.Score)

	for i := 0; i < 15; i++ {
		s.Credit(1, true)
	}
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 22, s.XPToNext)
	assert.Equal(t, 130, s.Score)
}

func TestDoubleScorePowerup(t *testing.T) {
	f := newFixture(t)
	f.r.GrantPowerup(entity.PlayerHost, PowerupDoubleScore)
	require.True(t, f.r.DoubleScore())

	pos := vmath.V(800, 800)
	f.spawn(t, entity.KindJelly, pos)
	f.shoot(t, pos, vmath.V(1, 0), 100)
	f.r.Resolve()
	assert.Equal(t, 20, f.r.Stats.Score)

	f.r.Tick(parameter.PowerupDuration)
	assert.False(t, f.r.DoubleScore())

	changes := f.events[event.EventPowerupChanged]
	require.Len(t, changes, 2)
	assert.True(t, changes[0].(*event.PowerupPayload).Active)
	assert.False(t, changes[1].(*event.PowerupPayload).Active)
}

func TestShieldExpiryReported(t *testing.T) {
	f := newFixture(t)
	f.r.GrantPowerup(entity.PlayerGuest, PowerupShield)
	require.True(t, f.guest.Shielded())

	f.guest.Step(parameter.PowerupDuration)
	f.r.Tick(parameter.TickInterval)
	changes := f.events[event.EventPowerupChanged]
	require.Len(t, changes, 2)
	last := changes[1].(*event.PowerupPayload)
	assert.Equal(t, entity.PlayerGuest, last.Player)
	assert.Equal(t, "shield", last.Name)
	assert.False(t, last.Active)
}

func TestApplyUpgrade(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.r.ApplyUpgrade(entity.PlayerHost, "damage"))
	assert.Equal(t, 1.25, f.r.Mods.Damage)

	assert.True(t, f.r.ApplyUpgrade(entity.PlayerHost, "CRIT"))
	assert.Equal(t, 10.0, f.r.Mods.Crit)

	assert.True(t, f.r.ApplyUpgrade(entity.PlayerGuest, "speed"))
	assert.InDelta(t, 1.1, f.guest.SpeedMul, 1e-9)
	assert.Equal(t, 1.0, f.host.SpeedMul)

	f.r.Stats.HP = 50
	assert.True(t, f.r.ApplyUpgrade(entity.PlayerHost, "maxhp"))
	assert.Equal(t, 120.0, f.r.Stats.MaxHP)
	assert.Equal(t, 70.0, f.r.Stats.HP)

	for i := 0; i < 8; i++ {
		f.r.ApplyUpgrade(entity.PlayerHost, "cooldown")
	}
	assert.Equal(t, parameter.CooldownReductionCap, f.r.Mods.Cooldown)

	assert.True(t, f.r.ApplyUpgrade(entity.PlayerHost, "firerate"))
	assert.Equal(t, 450*time.Millisecond, f.r.Mods.FireInterval())

	assert.True(t, f.r.ApplyUpgrade(entity.PlayerHost, "powerup:speed"))
	assert.Equal(t, parameter.PowerupDuration, f.host.SpeedBoost)

	assert.False(t, f.r.ApplyUpgrade(entity.PlayerHost, "laser"))
	assert.False(t, f.r.ApplyUpgrade(entity.PlayerHost, "powerup:laser"))
}

func TestFireTargetsNearestInRange(t *testing.T) {
	f := newFixture(t)
	far := f.spawn(t, entity.KindJelly, f.host.Body.Pos.Add(vmath.V(600, 0)))
	near := f.spawn(t, entity.KindJelly, f.host.Body.Pos.Add(vmath.V(0, 300)))

	assert.False(t, f.r.Fire(f.host, 499*time.Millisecond))
	require.True(t, f.r.Fire(f.host, time.Millisecond))
	require.Equal(t, 1, f.shots.ActiveCount())

	var shot *entity.Projectile
	f.shots.Each(func(p *entity.Projectile) bool { shot = p; return false })
	target, ok := shot.Target.Get()
	require.True(t, ok)
	assert.Same(t, near, target)
	assert.NotSame(t, far, target)
	assert.Equal(t, entity.OwnerHost, shot.Owner)
	assert.True(t, shot.Homing)
	assert.InDelta(t, 1, shot.Body.Vel.Normalize().Y, 1e-9)
}

func TestFireTieGoesToFirstScanned(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, entity.KindJelly, f.host.Body.Pos.Add(vmath.V(200, 0)))
	f.spawn(t, entity.KindJelly, f.host.Body.Pos.Add(vmath.V(-200, 0)))
	f.spawn(t, entity.KindWisp, f.host.Body.Pos.Add(vmath.V(0, 200)))

	var first *entity.Entity
	f.pop.Each(func(e *entity.Entity) bool { first = e; return false })

	require.True(t, f.r.Fire(f.host, parameter.FireInterval))
	var shot *entity.Projectile
	f.shots.Each(func(p *entity.Projectile) bool { shot = p; return false })
	target, ok := shot.Target.Get()
	require.True(t, ok)
	assert.Same(t, first, target)
}

func TestSeatHeroScalesWeapon(t *testing.T) {
	heroes := entity.DefaultHeroes()
	f := newFixture(t)
	f.r.SeatHero(entity.PlayerHost, heroes.Lookup(entity.HeroWeaver))
	f.spawn(t, entity.KindGolem, f.host.Body.Pos.Add(vmath.V(100, 0)))

	interval := time.Duration(float64(parameter.FireInterval) * 0.8)
	assert.False(t, f.r.Fire(f.host, interval-time.Millisecond))
	assert.True(t, f.r.Fire(f.host, time.Millisecond), "weaver fires at 0.8 of the base interval")
	assert.InDelta(t, 1.2, f.host.SpeedMul, 1e-9)

	f.r.SeatHero(entity.PlayerGuest, heroes.Lookup(entity.HeroSpectre))
	f.guest.Body.Pos = f.host.Body.Pos
	f.r.Mods.Crit = 0
	require.True(t, f.r.Fire(f.guest, 2*parameter.FireInterval))
	var low float64 = -1
	f.shots.Each(func(p *entity.Projectile) bool {
		if p.Owner == entity.OwnerGuest {
			low = p.Damage
		}
		return true
	})
	assert.GreaterOrEqual(t, low, parameter.ProjectileDamage*1.8-1e-9, "spectre damage multiplier")
}

func TestSeatHeroHPBonusReplaced(t *testing.T) {
	heroes := entity.DefaultHeroes()
	f := newFixture(t)

	f.r.SeatHero(entity.PlayerHost, heroes.Lookup(entity.HeroBastion))
	assert.Equal(t, parameter.PlayerHP+40, f.r.Stats.MaxHP)
	assert.Equal(t, parameter.PlayerHP+40, f.r.Stats.HP)

	f.r.SeatHero(entity.PlayerHost, heroes.Lookup(entity.HeroBastion))
	assert.Equal(t, parameter.PlayerHP+40, f.r.Stats.MaxHP, "reseating does not stack")

	f.r.SeatHero(entity.PlayerHost, heroes.Lookup(entity.HeroVanguard))
	assert.Equal(t, parameter.PlayerHP, f.r.Stats.MaxHP)
	assert.Equal(t, parameter.PlayerHP, f.r.Stats.HP)
	assert.InDelta(t, 1.0, f.host.SpeedMul, 1e-9)
}

func TestFireHoldsWithoutTarget(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, entity.KindJelly, f.host.Body.Pos.Add(vmath.V(parameter.FireRange+50, 0)))

	assert.False(t, f.r.Fire(f.host, time.Second))
	assert.Equal(t, 0, f.shots.ActiveCount())
	assert.Equal(t, parameter.FireInterval, f.host.FireTimer)
}

func TestHomingDropsDeadTarget(t *testing.T) {
	f := newFixture(t)
	e := f.spawn(t, entity.KindJelly, vmath.V(800, 800))
	p := f.shoot(t, vmath.V(500, 500), vmath.V(1, 0), 10)
	p.Homing = true
	p.Target = entity.RefOf(e)

	f.r.StepProjectiles(parameter.TickInterval)
	assert.True(t, p.Homing)

	f.pop.Release(e)
	f.pop.Acquire(entity.KindJelly) // Same slot, new generation
	f.r.StepProjectiles(parameter.TickInterval)
	assert.False(t, p.Homing)
	assert.False(t, p.Target.Valid())
}

func TestProjectileExpires(t *testing.T) {
	f := newFixture(t)
	p := f.shoot(t, vmath.V(500, 500), vmath.V(1, 0), 10)

	f.r.StepProjectiles(parameter.ProjectileTTL - time.Millisecond)
	require.True(t, p.Active())
	assert.InDelta(t, 500+parameter.ProjectileSpeed*1.999, p.Body.Pos.X, 1e-6)

	f.r.StepProjectiles(time.Millisecond)
	assert.False(t, p.Active())
}

type wallAbove struct{ y float64 }

func (w wallAbove) BlockedAt(pos vmath.Vec2) bool { return pos.Y < w.y }

func TestProjectileStopsAtWall(t *testing.T) {
	f := newFixture(t, WithWorld(wallAbove{y: 490}))
	p := f.shoot(t, vmath.V(500, 500), vmath.V(0, -1), 10)

	f.r.StepProjectiles(10 * time.Millisecond)
	assert.True(t, p.Active())
	f.r.StepProjectiles(20 * time.Millisecond)
	assert.False(t, p.Active())
}

func TestHostileShotHitsTeam(t *testing.T) {
	f := newFixture(t)
	sentinel := f.spawn(t, entity.KindSentinel, f.host.Body.Pos.Add(vmath.V(-100, 0)))
	f.r.FireHostile(sentinel, vmath.V(1, 0))
	require.Equal(t, 1, f.shots.ActiveCount())

	for i := 0; i < 30 && f.shots.ActiveCount() > 0; i++ {
		f.r.StepProjectiles(parameter.TickInterval)
		f.r.Resolve()
	}
	assert.Equal(t, parameter.PlayerHP-sentinel.Damage, f.r.Stats.HP)
	assert.True(t, sentinel.Active(), "hostile shots never hit enemies")
}

func TestLootOnKill(t *testing.T) {
	bag := &extraction.Bag{}
	f := newFixture(t, WithLoot(extraction.DefaultLootTables(), bag))

	for i := 0; i < 20; i++ {
		pos := vmath.V(800, 800)
		f.spawn(t, entity.KindLootBunny, pos)
		f.shoot(t, pos, vmath.V(1, 0), 1000)
		f.r.Resolve()
	}

	kills := f.events[event.EventEnemyKilled]
	require.Len(t, kills, 20)
	bagged := 0
	for _, k := range kills {
		id := k.(*event.EnemyKilledPayload).LootID
		require.NotEmpty(t, id)
		if !strings.HasPrefix(id, PowerupPrefix) {
			bagged++
		}
	}
	assert.Equal(t, bagged, bag.Len())
}

func TestExtractEndsMatch(t *testing.T) {
	bag := &extraction.Bag{}
	bag.Add(extraction.LootDataChip)
	f := newFixture(t, WithLoot(extraction.DefaultLootTables(), bag))
	f.spawn(t, entity.KindJelly, vmath.V(900, 900))
	f.shoot(t, vmath.V(10, 10), vmath.V(1, 0), 1)

	require.True(t, f.r.Extract())
	assert.False(t, f.r.Extract())
	assert.Equal(t, 0, f.pop.ActiveCount())
	assert.Equal(t, 0, f.shots.ActiveCount())

	require.Len(t, f.events[event.EventExtractionSuccess], 1)
	ex := f.events[event.EventExtractionSuccess][0].(*event.ExtractionSuccessPayload)
	assert.Equal(t, []string{extraction.LootDataChip}, ex.LootIDs)
	require.Len(t, f.events[event.EventMatchOver], 1)
	assert.Equal(t, ReasonExtraction, f.events[event.EventMatchOver][0].(*event.MatchOverPayload).Reason)
}

func TestSnapshotCountsAlive(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, entity.KindJelly, vmath.V(900, 900))
	f.spawn(t, entity.KindWisp, vmath.V(950, 900))
	f.r.Stats.Wave = 3

	s := f.r.Snapshot()
	assert.Equal(t, 2, s.EnemiesAlive)
	assert.Equal(t, 3, s.Wave)
	assert.Equal(t, parameter.PlayerHP, s.MaxHP)
}
