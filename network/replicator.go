package network

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/status"
	"github.com/lixenwraith/arena-core/vmath"
)

// Sender transmits one message body of type t; Service satisfies it
type Sender interface {
	Send(t MessageType, payload []byte) bool
}

// ErrWrongRole rejects a message the local role never accepts
var ErrWrongRole = errors.New("message not accepted by this role")

// Replicator applies the host-authoritative replication policy for one role
// Host: receives input, broadcasts snapshots with increasing ticks
// Guest: sends input, applies the newest snapshot, drops stale ones
// Not safe for concurrent use; driven by the tick owner
type Replicator struct {
	role   Role
	sender Sender
	log    *zap.SugaredLogger

	inputEvery time.Duration
	stateEvery time.Duration
	sinceInput time.Duration
	sinceState time.Duration
	primed     bool

	tick     uint64 // Last broadcast tick (host)
	applied  uint64 // Last applied tick (guest)
	haveSnap bool
	inputSeq uint32

	sent  *atomic.Int64
	stale *atomic.Int64
}

// NewReplicator creates a replicator; reg may be nil
func NewReplicator(role Role, sender Sender, log *zap.SugaredLogger, reg *status.Registry) *Replicator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Replicator{
		role:       role,
		sender:     sender,
		log:        log,
		inputEvery: parameter.InputSendInterval,
		stateEvery: parameter.StateSendInterval,
		sent:       reg.Counter("net.replicated"),
		stale:      reg.Counter("net.stale"),
	}
}

// SetIntervals overrides the send caps
func (r *Replicator) SetIntervals(input, state time.Duration) {
	r.inputEvery, r.stateEvery = input, state
}

func (r *Replicator) Role() Role { return r.role }

// LastTick returns the newest broadcast (host) or applied (guest) tick
func (r *Replicator) LastTick() uint64 {
	if r.role == RoleGuest {
		return r.applied
	}
	return r.tick
}

// due advances a rate gate; the first call fires immediately
func due(since *time.Duration, every, dt time.Duration, primed bool) bool {
	*since += dt
	if primed && *since < every {
		return false
	}
	*since = 0
	return true
}

// BroadcastState sends a snapshot when the state interval elapsed
// build is only called when a snapshot is due
func (r *Replicator) BroadcastState(dt time.Duration, build func(tick uint64) *Snapshot) bool {
	if r.role != RoleHost {
		return false
	}
	if !due(&r.sinceState, r.stateEvery, dt, r.primed) {
		return false
	}
	r.primed = true
	r.tick++
	snap := build(r.tick)
	snap.Tick = r.tick
	body, err := snap.MarshalBinary()
	if err != nil {
		r.log.Warnw("snapshot encode failed", "error", err)
		return false
	}
	if !r.sender.Send(MsgState, body) {
		return false
	}
	r.sent.Add(1)
	return true
}

// SendInput sends the guest's movement when the input interval elapsed
// A pending dash is carried until an input frame goes out
func (r *Replicator) SendInput(dt time.Duration, move vmath.Vec2, dash bool) bool {
	if r.role != RoleGuest {
		return false
	}
	if !due(&r.sinceInput, r.inputEvery, dt, r.primed) {
		return false
	}
	r.primed = true
	r.inputSeq++
	if move.LenSq() > 1 {
		move = move.Normalize()
	}
	pkt := InputPacket{Seq: r.inputSeq, Move: move, Dash: dash}
	body, _ := pkt.MarshalBinary()
	if !r.sender.Send(MsgInput, body) {
		return false
	}
	r.sent.Add(1)
	return true
}

// SendMatchStart relays the match seed from the host
func (r *Replicator) SendMatchStart(m *MatchStart) error {
	body, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	if !r.sender.Send(MsgMatchStart, body) {
		return errors.New("match start not sent")
	}
	return nil
}

// SendMatchOver relays the final score; either side may end the match
func (r *Replicator) SendMatchOver(m *MatchOver) bool {
	body, err := m.MarshalBinary()
	if err != nil {
		return false
	}
	return r.sender.Send(MsgMatchOver, body)
}

// SendUpgrade relays a guest upgrade pick to the host
func (r *Replicator) SendUpgrade(name string) bool {
	body, err := (&UpgradePick{Name: name}).MarshalBinary()
	if err != nil {
		return false
	}
	return r.sender.Send(MsgUpgrade, body)
}

// Receive decodes an inbound body for the local role
// Returns *InputPacket, *UpgradePick (host), *Snapshot, *MatchStart (guest) or *MatchOver (both)
// A stale snapshot yields (nil, nil)
func (r *Replicator) Receive(t MessageType, data []byte) (any, error) {
	switch t {
	case MsgInput:
		if r.role != RoleHost {
			return nil, ErrWrongRole
		}
		var p InputPacket
		if err := p.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrap(err, "input")
		}
		return &p, nil

	case MsgUpgrade:
		if r.role != RoleHost {
			return nil, ErrWrongRole
		}
		var u UpgradePick
		if err := u.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrap(err, "upgrade")
		}
		return &u, nil

	case MsgState:
		if r.role != RoleGuest {
			return nil, ErrWrongRole
		}
		var s Snapshot
		if err := s.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrap(err, "state")
		}
		if r.haveSnap && s.Tick <= r.applied {
			r.stale.Add(1)
			return nil, nil
		}
		r.haveSnap = true
		r.applied = s.Tick
		return &s, nil

	case MsgMatchStart:
		if r.role != RoleGuest {
			return nil, ErrWrongRole
		}
		var m MatchStart
		if err := m.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrap(err, "match start")
		}
		return &m, nil

	case MsgMatchOver:
		var m MatchOver
		if err := m.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrap(err, "match over")
		}
		return &m, nil
	}
	return nil, errors.Errorf("unexpected message %s", t)
}

// Reset clears tick tracking for a new match
func (r *Replicator) Reset() {
	r.tick, r.applied, r.haveSnap = 0, 0, false
	r.sinceInput, r.sinceState, r.primed = 0, 0, false
	r.inputSeq = 0
}
