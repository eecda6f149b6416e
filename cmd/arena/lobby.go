package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/network"
)

// lobbyPoll is how often the lobby pumps the bus while waiting
const lobbyPoll = 20 * time.Millisecond

// errPeerLost reports a disconnect before the match began
var errPeerLost = errors.New("peer disconnected in lobby")

// lobby pumps the bus until the match can begin
// Host: the guest connected. Guest: the host's match start arrived.
type lobby struct {
	role  network.Role
	ready bool
	lost  string
	start network.MatchStart
	err   error
}

func newLobby(bus *event.Bus, role network.Role) *lobby {
	l := &lobby{role: role}
	bus.Subscribe(event.EventPeerConnected, func(event.GameEvent) {
		if l.role == network.RoleHost {
			l.ready = true
		}
	})
	bus.Subscribe(event.EventPeerDisconnected, func(ev event.GameEvent) {
		if l.ready {
			return
		}
		l.lost = "unknown"
		if p, ok := ev.Payload.(*event.PeerPayload); ok {
			l.lost = p.Reason
		}
	})
	bus.Subscribe(event.EventNetworkPacket, func(ev event.GameEvent) {
		p, ok := ev.Payload.(*event.NetworkPacketPayload)
		if !ok || l.ready || l.role != network.RoleGuest || network.MessageType(p.MsgType) != network.MsgMatchStart {
			return
		}
		if err := l.start.UnmarshalBinary(p.Data); err != nil {
			l.err = errors.Wrap(err, "match start")
			return
		}
		l.ready = true
	})
	return l
}

// wait blocks until ready, the peer is lost or ctx ends
func (l *lobby) wait(ctx context.Context, bus *event.Bus) error {
	ticker := time.NewTicker(lobbyPoll)
	defer ticker.Stop()
	for {
		bus.Dispatch()
		switch {
		case l.err != nil:
			return l.err
		case l.ready:
			return nil
		case l.lost != "":
			return errors.Wrap(errPeerLost, l.lost)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// matchID returns the id the host announced, or a fresh one
func (l *lobby) matchID() uuid.UUID {
	if l.role == network.RoleGuest && l.start.MatchID != uuid.Nil {
		return l.start.MatchID
	}
	return uuid.New()
}
