package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/arena-core/director"
	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/network"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/status"
	"github.com/lixenwraith/arena-core/terrain"
	"github.com/lixenwraith/arena-core/vmath"
)

type sent struct {
	t    network.MessageType
	body []byte
}

type captureSender struct {
	mu  sync.Mutex
	out []sent
}

func (c *captureSender) Send(t network.MessageType, body []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, sent{t, append([]byte(nil), body...)})
	return true
}

func (c *captureSender) count(t network.MessageType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.out {
		if s.t == t {
			n++
		}
	}
	return n
}

func newTestMatch(t *testing.T, role network.Role, opts ...MatchOption) (*Match, *event.Bus) {
	t.Helper()
	cfg := DefaultMatchConfig()
	cfg.Seed = 42
	cfg.Role = role
	bus := event.NewBus(nil)
	m := NewMatch(cfg, bus, opts...)
	require.NotNil(t, m.Host())
	return m, bus
}

func run(m *Match, ticks int) {
	for i := 0; i < ticks; i++ {
		m.Step(parameter.TickInterval)
	}
}

func TestMatchSoloSpawnsFirstWave(t *testing.T) {
	reg := status.NewRegistry()
	m, _ := newTestMatch(t, network.RoleNone, WithMetrics(reg))
	assert.Nil(t, m.Guest())

	m.Start()
	run(m, 120)

	assert.Equal(t, 1, m.Director().Wave())
	assert.Equal(t, 1, m.Combat().Stats.Wave)
	assert.Positive(t, reg.Counter("director.spawned").Load())
	assert.Equal(t, uint64(120), m.Tick())
}

func TestMatchSpawnsInsideWorld(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	assert.True(t, m.World().Walkable(m.Host().Body.Pos))

	var spawned []vmath.Vec2
	m.Start()
	for i := 0; i < 200 && len(spawned) == 0; i++ {
		m.Step(parameter.TickInterval)
		m.Population().Each(func(e *entity.Entity) bool {
			spawned = append(spawned, e.Body.Pos)
			return true
		})
	}
	require.NotEmpty(t, spawned)
	for _, pos := range spawned {
		_, ok := m.World().TileAt(pos)
		assert.True(t, ok, "spawn %v outside the map", pos)
	}
}

func TestMatchIdleUntilStarted(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	run(m, 10)
	assert.Equal(t, uint64(0), m.Tick())
	assert.Equal(t, director.StateIdle, m.Director().State())
}

func TestMatchStartEventStartsMatch(t *testing.T) {
	m, bus := newTestMatch(t, network.RoleNone)
	id := uuid.New()
	bus.Publish(event.GameEvent{Type: event.EventMatchStart, Payload: &event.MatchStartPayload{
		MatchID: id,
		Mode:    "survival",
		HeroID:  "Weaver",
	}})
	m.Step(parameter.TickInterval)

	assert.Equal(t, uint64(1), m.Tick(), "started inside the dispatching tick")
	assert.Equal(t, director.StateSpawning, m.Director().State())
	assert.Equal(t, "survival", m.Config().Mode)
	assert.Equal(t, id, m.Config().MatchID)
	assert.Equal(t, entity.HeroWeaver, m.Config().HeroID)
	assert.Equal(t, entity.HeroWeaver, m.Host().Hero)

	// A second start changes nothing
	bus.Publish(event.GameEvent{Type: event.EventMatchStart, Payload: &event.MatchStartPayload{HeroID: entity.HeroBastion}})
	m.Step(parameter.TickInterval)
	assert.Equal(t, entity.HeroWeaver, m.Host().Hero)
}

func TestMatchHeroesDifferInStats(t *testing.T) {
	build := func(hero string) *Match {
		cfg := DefaultMatchConfig()
		cfg.Seed = 42
		cfg.HeroID = hero
		return NewMatch(cfg, event.NewBus(nil))
	}
	weaver, bastion := build(entity.HeroWeaver), build(entity.HeroBastion)

	assert.Greater(t, weaver.Host().SpeedMul, bastion.Host().SpeedMul)
	assert.Less(t, weaver.Host().FireMul, bastion.Host().FireMul)
	assert.Greater(t, bastion.Combat().Stats.MaxHP, weaver.Combat().Stats.MaxHP)
	assert.Equal(t, bastion.Combat().Stats.MaxHP, bastion.Combat().Stats.HP)

	unknown := build("paladin")
	assert.Equal(t, entity.HeroVanguard, unknown.Host().Hero, "unknown ids fall back")
	assert.Equal(t, entity.HeroVanguard, unknown.Config().HeroID)
}

func TestMatchHeroSeatsBothPlayers(t *testing.T) {
	cfg := DefaultMatchConfig()
	cfg.Seed = 42
	cfg.Role = network.RoleHost
	cfg.HeroID = entity.HeroBastion
	m := NewMatch(cfg, event.NewBus(nil), WithSender(&captureSender{}))

	require.NotNil(t, m.Guest())
	assert.Equal(t, entity.HeroBastion, m.Guest().Hero)
	assert.InDelta(t, 0.8, m.Guest().SpeedMul, 1e-9)
	assert.Equal(t, parameter.PlayerHP+80, m.Combat().Stats.MaxHP, "each seat adds its bonus once")
}

func TestMatchZonesOnGround(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		cfg := DefaultMatchConfig()
		cfg.Seed = seed
		m := NewMatch(cfg, event.NewBus(nil))

		zones := m.Extraction().Zones()
		require.Len(t, zones, parameter.ExtractionZoneCount, "seed %d", seed)
		for i, z := range zones {
			tile, ok := m.World().TileAt(z.Center)
			require.True(t, ok, "seed %d zone %d", seed, i)
			assert.Equal(t, terrain.Ground, tile.Type, "seed %d zone %d", seed, i)
			assert.False(t, z.Contains(m.Host().Body.Pos), "seed %d: host spawned inside zone %d", seed, i)
		}
	}
}

func TestMatchHostDashNotLostToLatePress(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	m.Start()

	m.QueueDash()
	_, dash, seq, _ := m.takeLocalInput()
	require.True(t, dash)
	m.QueueDash() // Pressed while the first one is being handled
	m.ackDash(seq)
	assert.True(t, m.DashPending())

	m.Step(parameter.TickInterval)
	assert.False(t, m.DashPending())
	assert.True(t, m.Host().Invulnerable())
}

// gateSender fails until opened
type gateSender struct {
	captureSender
	open bool
}

func (g *gateSender) Send(t network.MessageType, body []byte) bool {
	if !g.open {
		return false
	}
	return g.captureSender.Send(t, body)
}

func TestMatchGuestKeepsDashUntilSent(t *testing.T) {
	out := &gateSender{}
	m, _ := newTestMatch(t, network.RoleGuest, WithSender(out))
	m.Start()

	m.QueueDash()
	run(m, 10)
	assert.True(t, m.DashPending(), "dash held while sends fail")

	out.open = true
	run(m, 10)
	assert.False(t, m.DashPending())
	require.Positive(t, out.count(network.MsgInput))

	var pkt network.InputPacket
	require.NoError(t, pkt.UnmarshalBinary(out.out[0].body))
	assert.True(t, pkt.Dash)
}

func TestMatchPauseFreezesSimulation(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	m.Start()
	m.Pause()
	run(m, 100)

	assert.True(t, m.Paused())
	assert.Equal(t, uint64(0), m.Tick())
	assert.Equal(t, 0, m.Population().ActiveCount())

	m.Resume()
	run(m, 5)
	assert.Equal(t, uint64(5), m.Tick())
}

func TestMatchAppliesUpgradeEvents(t *testing.T) {
	m, bus := newTestMatch(t, network.RoleNone)
	m.Start()
	before := m.Combat().Mods.Damage

	bus.Publish(event.GameEvent{
		Type:    event.EventApplyUpgrade,
		Payload: &event.ApplyUpgradePayload{Player: entity.PlayerHost, Type: "damage"},
	})
	m.Step(parameter.TickInterval)

	assert.Greater(t, m.Combat().Mods.Damage, before)
}

func TestMatchLocalUpgradeQueue(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	m.Start()
	m.QueueUpgrade("speed")
	m.Step(parameter.TickInterval)
	assert.InDelta(t, 1+parameter.UpgradeSpeedStep, m.Host().SpeedMul, 1e-9)
}

func TestMatchSetInputNormalizes(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	m.Start()
	m.SetInput(vmath.V(3, 4))
	m.Step(parameter.TickInterval)
	assert.InDelta(t, 0.6, m.Host().Input.X, 1e-9)
	assert.InDelta(t, 0.8, m.Host().Input.Y, 1e-9)
}

func TestMatchHostRelaysStartAndBroadcasts(t *testing.T) {
	out := &captureSender{}
	m, _ := newTestMatch(t, network.RoleHost, WithSender(out))
	require.NotNil(t, m.Guest())

	m.Start()
	require.Equal(t, 1, out.count(network.MsgMatchStart))
	assert.Equal(t, network.MsgMatchStart, out.out[0].t)

	var start network.MatchStart
	require.NoError(t, start.UnmarshalBinary(out.out[0].body))
	assert.Equal(t, int64(42), start.Seed)

	run(m, 60)
	n := out.count(network.MsgState)
	assert.GreaterOrEqual(t, n, 18)
	assert.LessOrEqual(t, n, 23)

	var last network.Snapshot
	for _, s := range out.out {
		if s.t == network.MsgState {
			require.NoError(t, last.UnmarshalBinary(s.body))
		}
	}
	assert.Equal(t, uint64(n), last.Tick)
}

func TestMatchHostAppliesGuestInput(t *testing.T) {
	m, bus := newTestMatch(t, network.RoleHost, WithSender(&captureSender{}))
	m.Start()

	body, err := (&network.InputPacket{Seq: 1, Move: vmath.V(0, 1)}).MarshalBinary()
	require.NoError(t, err)
	bus.Publish(event.GameEvent{
		Type:    event.EventNetworkPacket,
		Payload: &event.NetworkPacketPayload{MsgType: uint8(network.MsgInput), Data: body},
	})
	m.Step(parameter.TickInterval)

	assert.Equal(t, vmath.V(0, 1), m.Guest().Input)
}

func TestMatchGuestAppliesSnapshotExactly(t *testing.T) {
	out := &captureSender{}
	m, bus := newTestMatch(t, network.RoleGuest, WithSender(out))
	m.Start()

	host := entity.Transform{Pos: vmath.V(1234, 567), Rotation: 1.2345678}
	guest := entity.Transform{Pos: vmath.V(-20, 99), Rotation: -0.5}
	snap := network.NewSnapshot(7, host, guest, network.SnapshotStats{HP: 42.5, Score: 900, Wave: 3, Level: 4})
	body, err := snap.MarshalBinary()
	require.NoError(t, err)

	bus.Publish(event.GameEvent{
		Type:    event.EventNetworkPacket,
		Payload: &event.NetworkPacketPayload{MsgType: uint8(network.MsgState), Data: body},
	})
	m.Step(parameter.TickInterval)

	assert.Equal(t, snap.Host, m.Host().Transform())
	assert.Equal(t, snap.Guest, m.Guest().Transform())
	assert.Equal(t, 1.235, m.Host().Transform().Rotation)
	assert.Equal(t, 42.5, m.Combat().Stats.HP)
	assert.Equal(t, 900, m.Combat().Stats.Score)
	assert.Equal(t, 3, m.Combat().Stats.Wave)
	assert.Equal(t, 4, m.Combat().Stats.Level)

	// The guest never simulates enemies
	assert.Equal(t, director.StateIdle, m.Director().State())
	assert.Equal(t, 1, out.count(network.MsgInput))
}

func TestMatchPeerDisconnectEndsMatch(t *testing.T) {
	out := &captureSender{}
	m, bus := newTestMatch(t, network.RoleHost, WithSender(out))

	var over []*event.MatchOverPayload
	bus.Subscribe(event.EventMatchOver, func(ev event.GameEvent) {
		over = append(over, ev.Payload.(*event.MatchOverPayload))
	})

	m.Start()
	run(m, 60)
	bus.Publish(event.GameEvent{Type: event.EventPeerDisconnected, Payload: &event.PeerPayload{PeerID: "peer-1", Reason: "timeout"}})
	run(m, 3)

	require.Len(t, over, 1)
	assert.Equal(t, "disconnect", over[0].Reason)
	assert.True(t, m.Over())
	assert.Equal(t, director.StateIdle, m.Director().State())
	assert.Equal(t, 0, m.Population().ActiveCount())
	assert.Equal(t, 0, out.count(network.MsgMatchOver))
}

func TestMatchQuitNotifiesPeer(t *testing.T) {
	out := &captureSender{}
	m, _ := newTestMatch(t, network.RoleHost, WithSender(out))
	m.Start()
	run(m, 10)

	assert.True(t, m.Quit())
	assert.False(t, m.Quit())
	assert.Equal(t, 1, out.count(network.MsgMatchOver))

	ticks := m.Tick()
	run(m, 10)
	assert.Equal(t, ticks, m.Tick())
}

func TestMatchRemoteOverIsNotEchoed(t *testing.T) {
	out := &captureSender{}
	m, bus := newTestMatch(t, network.RoleGuest, WithSender(out))
	m.Start()

	body, err := (&network.MatchOver{Score: 77, Reason: "death"}).MarshalBinary()
	require.NoError(t, err)
	bus.Publish(event.GameEvent{
		Type:    event.EventNetworkPacket,
		Payload: &event.NetworkPacketPayload{MsgType: uint8(network.MsgMatchOver), Data: body},
	})
	m.Step(parameter.TickInterval)

	assert.True(t, m.Over())
	assert.Equal(t, 77, m.Combat().Stats.Score)
	assert.Equal(t, 0, out.count(network.MsgMatchOver))
}

func TestMatchScheduledBySchedulerView(t *testing.T) {
	m, _ := newTestMatch(t, network.RoleNone)
	m.Start()
	clock := NewManualClock(time.Unix(0, 0))
	s := NewScheduler(m, clock, nil)
	s.Frame()
	clock.Advance(100 * time.Millisecond)
	s.Frame()

	var tick uint64
	s.View(func() { tick = m.Tick() })
	assert.Equal(t, uint64(100*time.Millisecond/parameter.TickInterval), tick)
}
