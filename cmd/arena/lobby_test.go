package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/network"
)

func TestLobbyHostWaitsForPeer(t *testing.T) {
	bus := event.NewBus(nil)
	l := newLobby(bus, network.RoleHost)
	bus.Publish(event.GameEvent{Type: event.EventPeerConnected, Payload: &event.PeerPayload{PeerID: "peer-1"}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.wait(ctx, bus))
	assert.NotEqual(t, uuid.Nil, l.matchID())
}

func TestLobbyGuestReadsMatchStart(t *testing.T) {
	bus := event.NewBus(nil)
	l := newLobby(bus, network.RoleGuest)

	id := uuid.New()
	body, err := (&network.MatchStart{MatchID: id, Seed: 99, Mode: "coop", HeroID: "scout"}).MarshalBinary()
	require.NoError(t, err)
	bus.Publish(event.GameEvent{Type: event.EventPeerConnected, Payload: &event.PeerPayload{PeerID: "peer-1"}})
	bus.Publish(event.GameEvent{Type: event.EventNetworkPacket, Payload: &event.NetworkPacketPayload{MsgType: uint8(network.MsgMatchStart), Data: body}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.wait(ctx, bus))
	assert.Equal(t, int64(99), l.start.Seed)
	assert.Equal(t, "scout", l.start.HeroID)
	assert.Equal(t, id, l.matchID())
}

func TestLobbyPeerLost(t *testing.T) {
	bus := event.NewBus(nil)
	l := newLobby(bus, network.RoleGuest)
	bus.Publish(event.GameEvent{Type: event.EventPeerDisconnected, Payload: &event.PeerPayload{Reason: "timeout"}})

	err := l.wait(context.Background(), bus)
	require.Error(t, err)
	assert.ErrorIs(t, err, errPeerLost)
}

func TestLobbyCancelled(t *testing.T) {
	bus := event.NewBus(nil)
	l := newLobby(bus, network.RoleHost)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.wait(ctx, bus), context.DeadlineExceeded)
}
