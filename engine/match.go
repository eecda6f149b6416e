package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/behavior"
	"github.com/lixenwraith/arena-core/combat"
	"github.com/lixenwraith/arena-core/director"
	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/extraction"
	"github.com/lixenwraith/arena-core/network"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/pool"
	"github.com/lixenwraith/arena-core/status"
	"github.com/lixenwraith/arena-core/terrain"
	"github.com/lixenwraith/arena-core/vmath"
)

// MatchConfig fixes everything both peers must agree on, plus local tuning
type MatchConfig struct {
	MatchID uuid.UUID
	Seed    int64 // 0 picks a random seed
	Mode    string
	HeroID  string
	Role    network.Role

	Terrain  terrain.Config
	Director director.Config
	Bestiary *entity.Bestiary
	Heroes   *entity.Heroes
	Schedule *director.Schedule
	Loot     *extraction.LootTables

	PoolCapacity       int
	BossCapacity       int
	ProjectileCapacity int
	StartWave          int

	// Replication rates; zero keeps the defaults
	InputInterval time.Duration
	StateInterval time.Duration
}

// DefaultMatchConfig returns a solo match with standard tuning
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Mode:               "coop",
		HeroID:             entity.HeroVanguard,
		Terrain:            terrain.DefaultConfig(),
		Director:           director.DefaultConfig(),
		PoolCapacity:       parameter.PoolCapacityDefault,
		BossCapacity:       parameter.PoolCapacityBoss,
		ProjectileCapacity: parameter.PoolCapacityProjectile,
		StartWave:          1,
	}
}

// MatchOption configures a Match
type MatchOption func(*Match)

func WithLogger(log *zap.SugaredLogger) MatchOption { return func(m *Match) { m.log = log } }
func WithMetrics(reg *status.Registry) MatchOption  { return func(m *Match) { m.metrics = reg } }

// WithSender links the match to a peer; required for host and guest roles
func WithSender(s network.Sender) MatchOption { return func(m *Match) { m.sender = s } }

// Match is one running session: terrain, pools, director, AI, combat and replication
// Step is the only mutator and must be called from a single goroutine
type Match struct {
	cfg     MatchConfig
	log     *zap.SugaredLogger
	bus     *event.Bus
	metrics *status.Registry
	sender  network.Sender

	world   *terrain.Map
	pop     *entity.Population
	shots   *pool.Pool[*entity.Projectile]
	dir     *director.Director
	ai      *behavior.Controller
	combat  *combat.Resolver
	extract *extraction.Tracker
	bag     *extraction.Bag
	repl    *network.Replicator

	host  *entity.Player
	guest *entity.Player

	tick      uint64
	elapsed   time.Duration
	paused    bool
	started   bool
	lastStats event.StatsUpdatePayload
	targets   []vmath.Vec2

	// Local input, written from the input goroutine
	inputMu    sync.Mutex
	localMove  vmath.Vec2
	dashSeq    uint64 // Dash presses so far
	dashDone   uint64 // Presses already handled
	localPicks []string

	remoteMove vmath.Vec2
	remoteDash bool
	remoteOver bool
}

// NewMatch builds every subsystem from cfg; the match is idle until Start
func NewMatch(cfg MatchConfig, bus *event.Bus, opts ...MatchOption) *Match {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.MatchID == uuid.Nil {
		cfg.MatchID = uuid.New()
	}
	if cfg.StartWave < 1 {
		cfg.StartWave = 1
	}
	if bus == nil {
		bus = event.NewBus(nil)
	}
	if cfg.Heroes == nil {
		cfg.Heroes = entity.DefaultHeroes()
	}

	m := &Match{cfg: cfg, bus: bus}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}

	tcfg := cfg.Terrain
	tcfg.Seed = cfg.Seed
	m.world = terrain.Generate(tcfg)
	if m.world.Fallback() {
		m.log.Warnw("terrain fallback room used", "seed", cfg.Seed, "attempts", m.world.Attempts())
	}

	m.pop = entity.NewPopulation(cfg.PoolCapacity, cfg.BossCapacity)
	m.shots = entity.NewProjectilePool(cfg.ProjectileCapacity)
	m.bag = &extraction.Bag{}

	loot := cfg.Loot
	if loot == nil {
		loot = extraction.DefaultLootTables()
	}
	m.combat = combat.New(m.pop, m.shots, bus, rand.New(rand.NewSource(cfg.Seed^0x0c0b)),
		combat.WithLogger(m.log.Named("combat")),
		combat.WithMetrics(m.metrics),
		combat.WithWorld(m.world),
		combat.WithMatchID(cfg.MatchID),
		combat.WithLoot(loot, m.bag),
	)
	m.ai = behavior.NewController(rand.New(rand.NewSource(cfg.Seed^0xa1)), m.combat.FireHostile)
	m.dir = director.New(m.pop, cfg.Bestiary, cfg.Schedule, bus, rand.New(rand.NewSource(cfg.Seed^0xd1)),
		director.WithLogger(m.log.Named("director")),
		director.WithPlacer(m.world),
		director.WithPrimer(m.ai),
		director.WithMetrics(m.metrics),
		director.WithConfig(cfg.Director),
	)
	hostPos := m.spawnPoint()
	zones := extraction.PlaceZones(m.world, parameter.ExtractionZoneCount, parameter.ExtractionMinSeparation, hostPos)
	if len(zones) < parameter.ExtractionZoneCount {
		m.log.Warnw("extraction zones skipped", "placed", len(zones), "want", parameter.ExtractionZoneCount)
	}
	m.extract = extraction.NewTracker(zones, parameter.ExtractionDuration)
	m.host = entity.NewPlayer(entity.PlayerHost, hostPos)
	if cfg.Role != network.RoleNone {
		if m.sender == nil {
			m.log.Warnw("networked match without a sender", "role", cfg.Role)
			m.sender = discard{}
		}
		m.guest = entity.NewPlayer(entity.PlayerGuest, m.besideHost(hostPos))
		m.repl = network.NewReplicator(cfg.Role, m.sender, m.log.Named("net"), m.metrics)
		if cfg.InputInterval > 0 && cfg.StateInterval > 0 {
			m.repl.SetIntervals(cfg.InputInterval, cfg.StateInterval)
		}
	}
	m.combat.SetPlayers(m.host, m.guest)
	m.seatHeroes(cfg.HeroID)

	bus.Subscribe(event.EventMatchStart, m.onMatchStart)
	bus.Subscribe(event.EventApplyUpgrade, m.onApplyUpgrade)
	bus.Subscribe(event.EventNetworkPacket, m.onPacket)
	bus.Subscribe(event.EventPeerDisconnected, m.onPeerDisconnected)
	bus.Subscribe(event.EventWaveStart, m.onWaveStart)
	bus.Subscribe(event.EventMatchOver, m.onMatchOver)
	return m
}

type discard struct{}

func (discard) Send(network.MessageType, []byte) bool { return false }

func (m *Match) spawnPoint() vmath.Vec2 {
	pos, err := m.world.RandomWalkableTile()
	if err != nil {
		return m.world.WorldSize().Scale(0.5)
	}
	return pos
}

func (m *Match) besideHost(host vmath.Vec2) vmath.Vec2 {
	for _, off := range []vmath.Vec2{vmath.V(1, 0), vmath.V(-1, 0), vmath.V(0, 1), vmath.V(0, -1)} {
		p := host.Add(off.Scale(m.world.TileSize()))
		if m.world.Walkable(p) {
			return p
		}
	}
	return host
}

// seatHeroes gives every avatar the loadout of id; a coop party shares one hero
func (m *Match) seatHeroes(id string) {
	hero := m.cfg.Heroes.Lookup(id)
	if !m.cfg.Heroes.Has(id) {
		m.log.Warnw("unknown hero, using default", "hero", id, "default", hero.ID)
	}
	m.cfg.HeroID = hero.ID
	for _, p := range m.combat.Players() {
		m.combat.SeatHero(p.ID, hero)
	}
}

// Start begins wave one (host and solo) and relays the seed to the guest
func (m *Match) Start() {
	if m.started {
		return
	}
	m.started = true
	m.log.Infow("match start", "match", m.cfg.MatchID, "seed", m.cfg.Seed, "role", m.cfg.Role, "mode", m.cfg.Mode, "hero", m.cfg.HeroID)

	if m.cfg.Role == network.RoleGuest {
		return
	}
	if m.cfg.Role == network.RoleHost && m.repl != nil {
		err := m.repl.SendMatchStart(&network.MatchStart{
			MatchID: m.cfg.MatchID,
			Seed:    m.cfg.Seed,
			Mode:    m.cfg.Mode,
			HeroID:  m.cfg.HeroID,
		})
		if err != nil {
			m.log.Warnw("match start relay failed", "error", err)
		}
	}
	m.dir.SetAnchor(m.host.Body.Pos)
	m.dir.StartAt(m.cfg.StartWave)
}

// Step runs one fixed tick: inbound, spawn, AI, collisions, broadcast
func (m *Match) Step(dt time.Duration) {
	m.bus.Dispatch()
	if !m.started || m.paused || m.combat.Over() {
		return
	}
	m.tick++
	m.elapsed += dt

	if m.cfg.Role == network.RoleGuest {
		m.stepGuest(dt)
		return
	}

	if m.combat.ConsumeHitStop(dt) {
		m.broadcast(dt)
		return
	}

	m.applyLocalInput()

	m.dir.SetAnchor(m.host.Body.Pos)
	m.dir.Update(dt)

	m.stepPlayers(dt)
	m.stepEnemies(dt)

	m.combat.FireAll(dt)
	m.combat.StepProjectiles(dt)
	m.combat.Resolve()
	m.combat.Tick(dt)

	if !m.combat.Over() && m.extract.Update(m.host.Body.Pos, dt) {
		m.combat.Extract()
	}

	m.publishStats()
	m.broadcast(dt)
}

func (m *Match) stepGuest(dt time.Duration) {
	move, dash, seq, picks := m.takeLocalInput()
	for _, name := range picks {
		m.repl.SendUpgrade(name)
	}
	// The dash stays pending until an input packet carrying it leaves
	if m.repl.SendInput(dt, move, dash) && dash {
		m.ackDash(seq)
	}
	m.publishStats()
}

// applyLocalInput moves the local avatar; the guest avatar follows remote input
func (m *Match) applyLocalInput() {
	move, dash, seq, picks := m.takeLocalInput()
	m.host.Input = move
	if dash {
		m.host.Dash(m.combat.Mods.Cooldown)
		m.ackDash(seq)
	}
	for _, name := range picks {
		m.combat.ApplyUpgrade(entity.PlayerHost, name)
	}
	if m.guest != nil {
		m.guest.Input = m.remoteMove
		if m.remoteDash {
			m.guest.Dash(m.combat.Mods.Cooldown)
			m.remoteDash = false
		}
	}
}

func (m *Match) stepPlayers(dt time.Duration) {
	for _, p := range m.combat.Players() {
		prev := p.Body.Pos
		p.Step(dt)
		delta := p.Body.Pos.Sub(prev)
		next := m.world.ResolveMovement(prev, delta, p.Body.Radius)
		if next.X == prev.X && delta.X != 0 {
			p.Body.Vel.X = 0
		}
		if next.Y == prev.Y && delta.Y != 0 {
			p.Body.Vel.Y = 0
		}
		p.Body.Pos = next
	}
}

func (m *Match) stepEnemies(dt time.Duration) {
	m.targets = m.targets[:0]
	for _, p := range m.combat.Players() {
		m.targets = append(m.targets, p.Body.Pos)
	}
	sec := dt.Seconds()
	m.pop.Each(func(e *entity.Entity) bool {
		m.ai.Update(e, m.targets, dt)
		e.Body.Pos = m.world.ResolveMovement(e.Body.Pos, e.Body.Vel.Scale(sec), e.Body.Radius)
		return true
	})
}

// publishStats emits StatsUpdate when the HUD view changed
func (m *Match) publishStats() {
	s := m.combat.Snapshot()
	if *s == m.lastStats {
		return
	}
	m.lastStats = *s
	m.bus.Emit(event.GameEvent{Type: event.EventStatsUpdate, Payload: s, Tick: m.tick})
}

func (m *Match) broadcast(dt time.Duration) {
	if m.cfg.Role != network.RoleHost || m.repl == nil {
		return
	}
	m.repl.BroadcastState(dt, func(tick uint64) *network.Snapshot {
		st := m.combat.Stats
		return network.NewSnapshot(tick, m.host.Transform(), m.guest.Transform(), network.SnapshotStats{
			HP:    st.HP,
			Score: int32(st.Score),
			Wave:  int32(st.Wave),
			Level: int32(st.Level),
		})
	})
}

// --- Inbound handlers, run from Dispatch on the tick owner ---

// onMatchStart applies mode and hero, then starts the match
// The seed is fixed at construction; a different one is only reported
func (m *Match) onMatchStart(ev event.GameEvent) {
	p, ok := ev.Payload.(*event.MatchStartPayload)
	if !ok {
		return
	}
	if m.started {
		m.log.Debugw("match start ignored, already running", "match", m.cfg.MatchID)
		return
	}
	if p.Seed != 0 && p.Seed != m.cfg.Seed {
		m.log.Warnw("match start seed differs from local terrain", "event", p.Seed, "local", m.cfg.Seed)
	}
	if p.MatchID != uuid.Nil {
		m.cfg.MatchID = p.MatchID
		m.combat.SetMatchID(p.MatchID)
	}
	if p.Mode != "" {
		m.cfg.Mode = p.Mode
	}
	if p.HeroID != "" {
		m.seatHeroes(p.HeroID)
	}
	m.Start()
}

func (m *Match) onApplyUpgrade(ev event.GameEvent) {
	p, ok := ev.Payload.(*event.ApplyUpgradePayload)
	if !ok {
		return
	}
	if m.cfg.Role == network.RoleGuest {
		m.repl.SendUpgrade(p.Type)
		return
	}
	m.combat.ApplyUpgrade(p.Player, p.Type)
}

func (m *Match) onPacket(ev event.GameEvent) {
	pkt, ok := ev.Payload.(*event.NetworkPacketPayload)
	if !ok || m.repl == nil {
		return
	}
	msg, err := m.repl.Receive(network.MessageType(pkt.MsgType), pkt.Data)
	if err != nil {
		m.log.Debugw("packet dropped", "type", network.MessageType(pkt.MsgType), "error", err)
		return
	}
	switch v := msg.(type) {
	case *network.InputPacket:
		m.remoteMove = v.Move
		if v.Dash {
			m.remoteDash = true
		}
	case *network.UpgradePick:
		m.combat.ApplyUpgrade(entity.PlayerGuest, v.Name)
	case *network.Snapshot:
		m.ApplySnapshot(v)
	case *network.MatchOver:
		m.remoteOver = true
		m.combat.Stats.Score = int(v.Score)
		reason := v.Reason
		if reason == "" {
			reason = combat.ReasonQuit
		}
		m.combat.End(reason)
	case *network.MatchStart:
		if v.Seed != m.cfg.Seed {
			m.log.Warnw("match start seed differs from local terrain", "remote", v.Seed, "local", m.cfg.Seed)
		}
	}
}

// ApplySnapshot overwrites local transforms and stats exactly as received
func (m *Match) ApplySnapshot(s *network.Snapshot) {
	m.host.SetTransform(s.Host)
	if m.guest != nil {
		m.guest.SetTransform(s.Guest)
	}
	m.combat.Stats.HP = s.Stats.HP
	m.combat.Stats.Score = int(s.Stats.Score)
	m.combat.Stats.Wave = int(s.Stats.Wave)
	m.combat.Stats.Level = int(s.Stats.Level)
}

func (m *Match) onPeerDisconnected(ev event.GameEvent) {
	if m.cfg.Role == network.RoleNone {
		return
	}
	m.remoteOver = true
	m.combat.End(combat.ReasonDisconnect)
}

func (m *Match) onWaveStart(ev event.GameEvent) {
	if p, ok := ev.Payload.(*event.WaveStartPayload); ok {
		m.combat.Stats.Wave = p.Wave
	}
}

// onMatchOver stops spawning and tells the peer unless the peer ended it
func (m *Match) onMatchOver(ev event.GameEvent) {
	m.dir.Stop()
	if m.remoteOver || m.repl == nil {
		return
	}
	if p, ok := ev.Payload.(*event.MatchOverPayload); ok {
		m.repl.SendMatchOver(&network.MatchOver{Score: int32(p.Score), Reason: p.Reason})
	}
}

// --- Local controls, safe from any goroutine ---

// SetInput records the local movement intent
func (m *Match) SetInput(move vmath.Vec2) {
	if move.LenSq() > 1 {
		move = move.Normalize()
	}
	m.inputMu.Lock()
	m.localMove = move
	m.inputMu.Unlock()
}

// QueueDash requests a dash on the next tick
func (m *Match) QueueDash() {
	m.inputMu.Lock()
	m.dashSeq++
	m.inputMu.Unlock()
}

// QueueUpgrade picks an upgrade for the local player
func (m *Match) QueueUpgrade(name string) {
	m.inputMu.Lock()
	m.localPicks = append(m.localPicks, name)
	m.inputMu.Unlock()
}

// takeLocalInput returns the movement intent, whether a dash is pending with
// the press count it covers, and the upgrade picks queued since the last call
func (m *Match) takeLocalInput() (vmath.Vec2, bool, uint64, []string) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	picks := m.localPicks
	m.localPicks = nil
	return m.localMove, m.dashSeq != m.dashDone, m.dashSeq, picks
}

// ackDash marks presses up to seq handled; later presses stay pending
func (m *Match) ackDash(seq uint64) {
	m.inputMu.Lock()
	if seq > m.dashDone {
		m.dashDone = seq
	}
	m.inputMu.Unlock()
}

// DashPending reports a queued dash not yet handled
func (m *Match) DashPending() bool {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	return m.dashSeq != m.dashDone
}

// --- Tick-owner controls and accessors ---

// Pause freezes the simulation; inbound events are still dispatched
func (m *Match) Pause()  { m.paused = true }
func (m *Match) Resume() { m.paused = false }

// Quit ends the match locally
func (m *Match) Quit() bool { return m.combat.End(combat.ReasonQuit) }

func (m *Match) Paused() bool                                { return m.paused }
func (m *Match) Over() bool                                  { return m.combat.Over() }
func (m *Match) Tick() uint64                                { return m.tick }
func (m *Match) Elapsed() time.Duration                      { return m.elapsed }
func (m *Match) Config() MatchConfig                         { return m.cfg }
func (m *Match) World() *terrain.Map                         { return m.world }
func (m *Match) Director() *director.Director                { return m.dir }
func (m *Match) Combat() *combat.Resolver                    { return m.combat }
func (m *Match) Population() *entity.Population              { return m.pop }
func (m *Match) Extraction() *extraction.Tracker             { return m.extract }
func (m *Match) Host() *entity.Player                        { return m.host }
func (m *Match) Guest() *entity.Player                       { return m.guest }
func (m *Match) Projectiles() *pool.Pool[*entity.Projectile] { return m.shots }
