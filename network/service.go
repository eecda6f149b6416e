package network

import (
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/status"
)

// Service runs the match link under the service hub
// Inbound traffic is queued on the bus and applied at the start of the next tick
type Service struct {
	config    *Config
	transport *Transport
	log       *zap.SugaredLogger
	bus       *event.Bus

	sent    *atomic.Int64
	recv    *atomic.Int64
	dropped *atomic.Int64
	peers   *atomic.Int64

	disabled atomic.Bool
}

// NewService creates an uninitialized service; reg may be nil
func NewService(bus *event.Bus, log *zap.SugaredLogger, reg *status.Registry) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		config:  DefaultConfig(),
		log:     log,
		bus:     bus,
		sent:    reg.Counter("net.sent"),
		recv:    reg.Counter("net.recv"),
		dropped: reg.Counter("net.dropped"),
		peers:   reg.Counter("net.peers"),
	}
}

func (s *Service) Name() string           { return "network" }
func (s *Service) Dependencies() []string { return nil }

// Init builds the transport; an optional *Config replaces the defaults
// RoleNone leaves the service idle through Start
func (s *Service) Init(args ...any) error {
	for _, arg := range args {
		if cfg, ok := arg.(*Config); ok && cfg != nil {
			s.config = cfg
		}
	}
	s.transport = NewTransport(s.config, s.log)
	s.transport.SetHandlers(s.onConnect, s.onDisconnect, s.onMessage)
	s.disabled.Store(s.config.Role == RoleNone)
	return nil
}

func (s *Service) Start() error {
	if s.transport == nil || s.disabled.Load() {
		return nil
	}
	return s.transport.Start()
}

func (s *Service) Stop() error {
	if s.transport == nil {
		return nil
	}
	return s.transport.Stop()
}

// Transport exposes the underlying link manager, nil before Init
func (s *Service) Transport() *Transport {
	return s.transport
}

// Role returns the configured role
func (s *Service) Role() Role {
	return s.config.Role
}

func (s *Service) onConnect(id PeerID) {
	s.peers.Add(1)
	s.publish(event.EventPeerConnected, &event.PeerPayload{PeerID: peerName(id)})
}

func (s *Service) onDisconnect(id PeerID, reason string) {
	s.peers.Add(-1)
	s.publish(event.EventPeerDisconnected, &event.PeerPayload{PeerID: peerName(id), Reason: reason})
}

func (s *Service) onMessage(id PeerID, msg *Message) {
	s.recv.Add(1)
	s.publish(event.EventNetworkPacket, &event.NetworkPacketPayload{
		MsgType: uint8(msg.Type),
		Data:    msg.Payload,
	})
}

func (s *Service) publish(t event.EventType, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.GameEvent{Type: t, Payload: payload})
}

// Send implements Sender by broadcasting to the connected peer
func (s *Service) Send(t MessageType, payload []byte) bool {
	if s.transport == nil {
		return false
	}
	if s.transport.Broadcast(NewMessage(t, payload)) == 0 {
		s.dropped.Add(1)
		return false
	}
	s.sent.Add(1)
	return true
}

func (s *Service) PeerCount() int {
	if s.transport == nil {
		return 0
	}
	return s.transport.PeerCount()
}

// IsRunning reports a started transport
func (s *Service) IsRunning() bool {
	return s.transport != nil && s.transport.IsRunning()
}

func peerName(id PeerID) string {
	return "peer-" + strconv.FormatUint(uint64(id), 10)
}
