// Package combat resolves hits, contact damage, tether kills and team progression
package combat

import (
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/extraction"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/pool"
	"github.com/lixenwraith/arena-core/status"
	"github.com/lixenwraith/arena-core/vmath"
)

// Kill causes reported in EnemyKilledPayload.Cause
const (
	CauseShot    = "shot"
	CauseTether  = "tether"
	CauseContact = "contact"
)

// Match-over reasons
const (
	ReasonDeath      = "death"
	ReasonExtraction = "extraction"
	ReasonDisconnect = "disconnect"
	ReasonQuit       = "quit"
)

// Blocker reports world positions that stop projectiles; terrain.Map satisfies it
type Blocker interface {
	BlockedAt(pos vmath.Vec2) bool
}

// Resolver owns combat state of one match; mutated only by the tick owner
type Resolver struct {
	Stats Stats
	Mods  Modifiers

	log     *zap.SugaredLogger
	bus     *event.Bus
	rng     *rand.Rand
	pop     *entity.Population
	shots   *pool.Pool[*entity.Projectile]
	world   Blocker
	loot    *extraction.LootTables
	bag     *extraction.Bag
	matchID uuid.UUID

	players  [2]*entity.Player
	powerups [2][powerupCount]bool
	heroHP   [2]float64

	doubleScore time.Duration
	hitStop     time.Duration
	over        bool

	kills    *atomic.Int64
	fired    *atomic.Int64
	hits     *atomic.Int64
	contacts *atomic.Int64
}

// Option configures a Resolver
type Option func(*Resolver)

func WithLogger(log *zap.SugaredLogger) Option { return func(r *Resolver) { r.log = log } }
func WithWorld(w Blocker) Option               { return func(r *Resolver) { r.world = w } }
func WithMatchID(id uuid.UUID) Option          { return func(r *Resolver) { r.matchID = id } }

// WithLoot enables kill drops into bag
func WithLoot(tables *extraction.LootTables, bag *extraction.Bag) Option {
	return func(r *Resolver) {
		r.loot = tables
		r.bag = bag
	}
}

// WithMetrics caches counters from reg
func WithMetrics(reg *status.Registry) Option {
	return func(r *Resolver) {
		r.kills = reg.Counter("combat.kills")
		r.fired = reg.Counter("combat.fired")
		r.hits = reg.Counter("combat.hits")
		r.contacts = reg.Counter("combat.contacts")
	}
}

// New creates a resolver over the match pools
func New(pop *entity.Population, shots *pool.Pool[*entity.Projectile], bus *event.Bus, rng *rand.Rand, opts ...Option) *Resolver {
	r := &Resolver{
		Stats: NewStats(),
		Mods:  DefaultModifiers(),
		bus:   bus,
		rng:   rng,
		pop:   pop,
		shots: shots,
	}
	WithMetrics(nil)(r)
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	return r
}

// SetPlayers installs the avatars; guest is nil in solo matches
func (r *Resolver) SetPlayers(host, guest *entity.Player) {
	r.players = [2]*entity.Player{host, guest}
}

// SetMatchID replaces the id reported on MatchOver and ExtractionSuccess
func (r *Resolver) SetMatchID(id uuid.UUID) { r.matchID = id }

// Players returns the installed avatars, skipping empty seats
func (r *Resolver) Players() []*entity.Player {
	out := make([]*entity.Player, 0, 2)
	for _, p := range r.players {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (r *Resolver) player(id entity.PlayerID) *entity.Player {
	if int(id) >= len(r.players) {
		return nil
	}
	return r.players[id]
}

// Over reports a finished match
func (r *Resolver) Over() bool { return r.over }

// Bag returns the loot carried this match, nil without loot
func (r *Resolver) Bag() *extraction.Bag { return r.bag }

// HitStop returns the remaining simulation pause
func (r *Resolver) HitStop() time.Duration { return r.hitStop }

// ConsumeHitStop spends dt of pause; returns true while the simulation stays frozen
func (r *Resolver) ConsumeHitStop(dt time.Duration) bool {
	if r.hitStop <= 0 {
		return false
	}
	r.hitStop -= dt
	if r.hitStop < 0 {
		r.hitStop = 0
	}
	return true
}

// Tick advances combat timers
func (r *Resolver) Tick(dt time.Duration) {
	r.tickPowerups(dt)
}

// Resolve runs every overlap test for the current tick
func (r *Resolver) Resolve() {
	if r.over {
		return
	}
	r.resolveShots()
	r.resolveContacts()
	r.resolveTether()
}

// resolveShots tests projectiles against enemies (player shots) or players (hostile shots)
func (r *Resolver) resolveShots() {
	r.shots.Each(func(p *entity.Projectile) bool {
		if !p.Body.Enabled {
			return true
		}
		if p.Hostile() {
			r.hostileHit(p)
			return !r.over
		}
		r.pop.Each(func(e *entity.Entity) bool {
			if !e.Body.Enabled || !vmath.CirclesOverlap(p.Body.Pos, p.Body.Radius, e.Body.Pos, e.Body.Radius) {
				return true
			}
			r.hit(p, e)
			return false
		})
		return true
	})
}

// hit applies one projectile to one enemy and consumes the projectile
func (r *Resolver) hit(p *entity.Projectile, e *entity.Entity) {
	dealt, killed := e.TakeDamage(p.Damage, p.Body.Vel, parameter.KnockbackForce)
	r.hits.Add(1)
	r.addHitStop(HitStop(dealt))
	if killed {
		r.kill(e, p.Owner, CauseShot, true)
	}
	r.shots.Release(p)
}

func (r *Resolver) hostileHit(p *entity.Projectile) {
	for _, pl := range r.players {
		if pl == nil || !vmath.CirclesOverlap(p.Body.Pos, p.Body.Radius, pl.Body.Pos, pl.Body.Radius) {
			continue
		}
		if !pl.Protected() {
			r.damageTeam(p.Damage)
		}
		r.shots.Release(p)
		return
	}
}

// resolveContacts kills enemies touching a player; protected players take no damage
func (r *Resolver) resolveContacts() {
	for _, pl := range r.players {
		if pl == nil {
			continue
		}
		r.pop.Each(func(e *entity.Entity) bool {
			if !e.Body.Enabled || vmath.DistSq(e.Body.Pos, pl.Body.Pos) >= parameter.ContactRange*parameter.ContactRange {
				return true
			}
			r.contacts.Add(1)
			damage := e.Damage
			r.kill(e, pl.ID.Owner(), CauseContact, false)
			if !pl.Protected() {
				r.damageTeam(damage)
			}
			return !r.over
		})
		if r.over {
			return
		}
	}
}

// resolveTether kills enemies crossing the segment between two close players
func (r *Resolver) resolveTether() {
	a, b := r.players[entity.PlayerHost], r.players[entity.PlayerGuest]
	if a == nil || b == nil {
		return
	}
	if !r.TetherActive() {
		return
	}
	r.pop.Each(func(e *entity.Entity) bool {
		if e.Body.Enabled && vmath.SegmentCircle(a.Body.Pos, b.Body.Pos, e.Body.Pos, parameter.TetherEnemyRadius) {
			r.kill(e, entity.OwnerHost, CauseTether, true)
		}
		return true
	})
}

// TetherActive reports both players within tether reach
func (r *Resolver) TetherActive() bool {
	a, b := r.players[entity.PlayerHost], r.players[entity.PlayerGuest]
	if a == nil || b == nil {
		return false
	}
	reach := r.Mods.TetherLength()
	return vmath.DistSq(a.Body.Pos, b.Body.Pos) <= reach*reach
}

// kill releases e, credits the team when credit is set and emits EnemyKilled
func (r *Resolver) kill(e *entity.Entity, killer entity.Owner, cause string, credit bool) {
	payload := &event.EnemyKilledPayload{
		ID:     e.ID,
		Kind:   e.Kind,
		Pos:    e.Body.Pos,
		Value:  e.Value,
		Elite:  e.Elite,
		Boss:   e.Boss,
		Killer: killer,
		Cause:  cause,
	}
	r.pop.Release(e)
	r.kills.Add(1)

	if credit {
		if r.Stats.Credit(payload.Value, r.DoubleScore()) {
			r.log.Infow("level up", "level", r.Stats.Level, "xp_to_next", r.Stats.XPToNext)
		}
		payload.LootID = r.rollLoot(payload.Kind, payload.Boss)
	}
	r.emit(event.EventEnemyKilled, payload)
}

// rollLoot adds a drop to the bag or applies it as a team powerup
func (r *Resolver) rollLoot(kind entity.Kind, boss bool) string {
	if r.loot == nil {
		return ""
	}
	if boss {
		kind = entity.KindBoss
	}
	id, ok := r.loot.RollKill(kind, r.rng)
	if !ok {
		return ""
	}
	if strings.HasPrefix(id, PowerupPrefix) {
		pu, ok := ParsePowerup(id)
		if !ok {
			r.log.Warnw("unknown powerup drop", "id", id)
			return ""
		}
		for _, p := range r.Players() {
			r.GrantPowerup(p.ID, pu)
		}
		return id
	}
	if r.bag != nil {
		r.bag.Add(id)
	}
	return id
}

// damageTeam lowers the shared hp and ends the match at zero
func (r *Resolver) damageTeam(amount float64) {
	if r.over {
		return
	}
	if r.Stats.Damage(amount) {
		r.End(ReasonDeath)
	}
}

func (r *Resolver) addHitStop(d time.Duration) {
	if d > r.hitStop {
		r.hitStop = d
	}
}

// End emits MatchOver exactly once and releases every pooled object
func (r *Resolver) End(reason string) bool {
	if r.over {
		return false
	}
	r.over = true
	r.pop.ReleaseAll()
	r.shots.ReleaseAll()
	r.log.Infow("match over", "reason", reason, "score", r.Stats.Score, "wave", r.Stats.Wave, "level", r.Stats.Level)
	r.emit(event.EventMatchOver, &event.MatchOverPayload{
		MatchID: r.matchID,
		Score:   r.Stats.Score,
		Wave:    r.Stats.Wave,
		Level:   r.Stats.Level,
		Reason:  reason,
	})
	return true
}

// Extract ends the match through a zone and reports the carried loot
func (r *Resolver) Extract() bool {
	if r.over {
		return false
	}
	var ids []string
	if r.bag != nil {
		ids = r.bag.IDs()
	}
	r.emit(event.EventExtractionSuccess, &event.ExtractionSuccessPayload{MatchID: r.matchID, LootIDs: ids})
	return r.End(ReasonExtraction)
}

// Snapshot returns the HUD view; enemiesAlive is read from the population
func (r *Resolver) Snapshot() *event.StatsUpdatePayload {
	return &event.StatsUpdatePayload{
		HP:           r.Stats.HP,
		MaxHP:        r.Stats.MaxHP,
		Level:        r.Stats.Level,
		XP:           r.Stats.XP,
		XPToNext:     r.Stats.XPToNext,
		Score:        r.Stats.Score,
		Wave:         r.Stats.Wave,
		EnemiesAlive: r.pop.ActiveCount(),
	}
}

func (r *Resolver) emit(t event.EventType, payload any) {
	if r.bus != nil {
		r.bus.Emit(event.GameEvent{Type: t, Payload: payload})
	}
}
