package entity

import (
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/vmath"
)

func spawned(kind Kind) *Entity {
	e := New(1, kind)
	e.Activate()
	e.Configure(DefaultBestiary().Lookup(kind), vmath.V(100, 100), Unscaled)
	return e
}

func TestBestiaryUnknownFallsBackToJelly(t *testing.T) {
	b := DefaultBestiary()
	a := b.Lookup(Kind(200))
	if a.Kind != KindJelly || a.HP != 20 || a.Behavior != BehaviorChase {
		t.Errorf("unknown kind resolved to %+v, want jelly", a)
	}
	if b.Has(Kind(200)) {
		t.Error("unknown kind reported as present")
	}
}

func TestBestiaryTable(t *testing.T) {
	b := DefaultBestiary()
	tests := []struct {
		kind     Kind
		hp       float64
		behavior Behavior
	}{
		{KindTriDart, 15, BehaviorSwarm},
		{KindCharger, 40, BehaviorDash},
		{KindWisp, 5, BehaviorErratic},
		{KindCrab, 60, BehaviorStrafe},
		{KindSentinel, 100, BehaviorStationary},
		{KindLootBunny, 30, BehaviorFlee},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			a := b.Lookup(tt.kind)
			if a.HP != tt.hp || a.Behavior != tt.behavior {
				t.Errorf("got hp=%v behavior=%v", a.HP, a.Behavior)
			}
		})
	}
	if b.Lookup(KindCharger).Interval != 2*time.Second {
		t.Error("charger interval should be 2s")
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"TRI_DART", "tri-dart", " tri_dart "} {
		if k, ok := ParseKind(name); !ok || k != KindTriDart {
			t.Errorf("ParseKind(%q) = %v, %v", name, k, ok)
		}
	}
	if _, ok := ParseKind("dragon"); ok {
		t.Error("unknown name parsed")
	}
}

func TestKillIffDamageAtLeastHP(t *testing.T) {
	tests := []struct {
		hp, damage float64
		killed     bool
	}{
		{20, 19, false},
		{20, 20, true},
		{20, 25, true},
		{20, 0.5, false},
	}
	for _, tt := range tests {
		e := spawned(KindJelly)
		e.HP = tt.hp
		_, killed := e.TakeDamage(tt.damage, vmath.V(1, 0), 0)
		if killed != tt.killed {
			t.Errorf("hp=%v damage=%v killed=%v, want %v", tt.hp, tt.damage, killed, tt.killed)
		}
		if e.HP < 0 {
			t.Errorf("hp went negative: %v", e.HP)
		}
	}
}

func TestTakeDamageKnockback(t *testing.T) {
	e := spawned(KindJelly)
	e.TakeDamage(1, vmath.V(3, 4), 300)
	if math.Abs(e.Knock.Len()-300) > 1e-9 {
		t.Errorf("knock magnitude = %f, want 300", e.Knock.Len())
	}
	dir := e.Knock.Normalize()
	if math.Abs(dir.X-0.6) > 1e-9 || math.Abs(dir.Y-0.8) > 1e-9 {
		t.Errorf("knock direction = %v", dir)
	}
	if e.Flash != parameter.FlashDuration {
		t.Error("damage should trigger flash")
	}
}

func TestRecoveringTakesDoubleDamage(t *testing.T) {
	e := spawned(KindCharger)
	e.Phase = DashRecover
	dealt, _ := e.TakeDamage(10, vmath.V(1, 0), 0)
	if dealt != 20 {
		t.Errorf("dealt = %v, want 20", dealt)
	}
}

func TestActivateResetsAndBumpsGeneration(t *testing.T) {
	e := spawned(KindJelly)
	e.HP = 3
	e.Timer = time.Second
	gen := e.Generation()

	e.Deactivate()
	if e.Body.Enabled {
		t.Error("deactivated entity must disable its collider")
	}
	e.Activate()
	if e.HP != 0 || e.Timer != 0 || e.Kind != KindJelly || e.ID != 1 {
		t.Errorf("activate did not reset: %+v", e)
	}
	if e.Generation() != gen+1 {
		t.Errorf("generation = %d, want %d", e.Generation(), gen+1)
	}
}

func TestRefExpiresOnRecycle(t *testing.T) {
	e := spawned(KindJelly)
	ref := RefOf(e)
	if !ref.Valid() {
		t.Fatal("fresh ref should resolve")
	}
	e.Deactivate()
	if ref.Valid() {
		t.Error("ref to inactive entity must not resolve")
	}
	e.Activate()
	if ref.Valid() {
		t.Error("ref must not resolve to a recycled slot")
	}
	if (Ref{}).Valid() {
		t.Error("zero ref resolved")
	}
}

func TestConfigureModifiers(t *testing.T) {
	e := New(2, KindGolem)
	e.Activate()
	e.Configure(DefaultBestiary().Lookup(KindGolem), vmath.V(0, 0), Modifiers{HP: 5, Speed: 1, Radius: 1.5, Boss: true})
	if e.MaxHP != 750 || e.HP != 750 {
		t.Errorf("boss hp = %v", e.MaxHP)
	}
	if e.Body.Radius != 45 {
		t.Errorf("boss radius = %v", e.Body.Radius)
	}
	if !e.Boss || !e.Body.Enabled {
		t.Error("boss flag and collider expected")
	}
}

func TestPlayerDashCooldownReductionCapped(t *testing.T) {
	p := NewPlayer(PlayerHost, vmath.V(0, 0))
	p.Input = vmath.V(1, 0)
	if !p.Dash(0.9) {
		t.Fatal("first dash should start")
	}
	if !p.Invulnerable() {
		t.Error("dash grants i-frames")
	}
	if got := p.DashCooldown(); got != 750*time.Millisecond {
		t.Errorf("cooldown = %v, want 750ms with capped reduction", got)
	}
	if p.Dash(0) {
		t.Error("dash during cooldown must fail")
	}

	p.Step(parameter.PlayerDashDuration)
	if p.Invulnerable() {
		t.Error("i-frames should expire after dash duration")
	}
}

func TestPlayerStepAccelerates(t *testing.T) {
	p := NewPlayer(PlayerHost, vmath.V(0, 0))
	p.Input = vmath.V(0, 1)
	for i := 0; i < 60; i++ {
		p.Step(16 * time.Millisecond)
	}
	if p.Body.Pos.Y <= 0 {
		t.Errorf("player did not move: %v", p.Body.Pos)
	}
	if p.Body.Vel.Len() > parameter.PlayerMaxSpeed+1e-9 {
		t.Errorf("speed %f exceeds cap", p.Body.Vel.Len())
	}

	p.Input = vmath.Vec2{}
	for i := 0; i < 60; i++ {
		p.Step(16 * time.Millisecond)
	}
	if !p.Body.Vel.IsZero() {
		t.Errorf("drag should stop the player, vel = %v", p.Body.Vel)
	}
}
