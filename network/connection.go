package network

import (
	"bufio"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/core"
)

// ErrMaxPeers rejects links beyond the configured limit
var ErrMaxPeers = errors.New("max peers reached")

// PeerID uniquely identifies a connected peer
type PeerID uint32

// ConnState represents connection lifecycle state
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

// frameIO carries whole messages over one link
type frameIO interface {
	ReadMessage() (*Message, error)
	WriteMessage(msg *Message) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// tcpFrames frames messages over a byte stream
type tcpFrames struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

func newTCPFrames(conn net.Conn, cfg *Config) *tcpFrames {
	return &tcpFrames{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, cfg.ReadBufferSize),
		writer: bufio.NewWriterSize(conn, cfg.WriteBufferSize),
	}
}

func (f *tcpFrames) ReadMessage() (*Message, error) { return Decode(f.reader) }

func (f *tcpFrames) WriteMessage(msg *Message) error {
	if err := msg.Encode(f.writer); err != nil {
		return err
	}
	return f.writer.Flush()
}

func (f *tcpFrames) SetReadDeadline(t time.Time) error  { return f.conn.SetReadDeadline(t) }
func (f *tcpFrames) SetWriteDeadline(t time.Time) error { return f.conn.SetWriteDeadline(t) }
func (f *tcpFrames) RemoteAddr() string                 { return f.conn.RemoteAddr().String() }
func (f *tcpFrames) Close() error                       { return f.conn.Close() }

// Peer represents the remote endpoint of a match
type Peer struct {
	ID       PeerID
	Addr     string
	State    atomic.Uint32 // ConnState
	LastSeen atomic.Int64  // UnixNano

	// Sequence tracking
	OutSeq atomic.Uint32 // Next outbound sequence
	InSeq  atomic.Uint32 // Last processed inbound sequence

	io  frameIO
	cfg *Config
	log *zap.SugaredLogger

	// Send queue
	sendCh chan *Message

	// Lifecycle
	closeCh   chan struct{}
	closeOnce sync.Once
	reason    atomic.Value // string
}

// newPeer creates a peer from an established link
func newPeer(id PeerID, fio frameIO, cfg *Config, log *zap.SugaredLogger) *Peer {
	p := &Peer{
		ID:      id,
		Addr:    fio.RemoteAddr(),
		io:      fio,
		cfg:     cfg,
		log:     log,
		sendCh:  make(chan *Message, cfg.SendQueueSize),
		closeCh: make(chan struct{}),
	}
	p.State.Store(uint32(StateConnected))
	p.LastSeen.Store(time.Now().UnixNano())
	return p
}

// Send queues a message for transmission
// Returns false if peer is disconnected or queue full
func (p *Peer) Send(msg *Message) bool {
	if ConnState(p.State.Load()) != StateConnected {
		return false
	}

	msg.Seq = p.OutSeq.Add(1)
	msg.Ack = p.InSeq.Load()

	select {
	case p.sendCh <- msg:
		return true
	default:
		return false // Queue full
	}
}

// Close initiates shutdown; the first reason wins
func (p *Peer) Close() {
	p.closeWith("closed")
}

func (p *Peer) closeWith(reason string) {
	p.closeOnce.Do(func() {
		p.reason.Store(reason)
		p.State.Store(uint32(StateDisconnecting))
		close(p.closeCh)
		p.io.Close()
		p.State.Store(uint32(StateDisconnected))
	})
}

// Done is closed when the link is gone
func (p *Peer) Done() <-chan struct{} { return p.closeCh }

// Reason returns why the link closed, empty while connected
func (p *Peer) Reason() string {
	r, _ := p.reason.Load().(string)
	return r
}

// readLoop reads messages until the link fails or goes silent
func (p *Peer) readLoop(handler func(PeerID, *Message)) {
	for {
		if p.cfg.DisconnectTimeout > 0 {
			p.io.SetReadDeadline(time.Now().Add(p.cfg.DisconnectTimeout))
		}
		msg, err := p.io.ReadMessage()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				p.closeWith("timeout")
			} else {
				p.closeWith("read: " + err.Error())
			}
			return
		}

		p.LastSeen.Store(time.Now().UnixNano())

		if msg.Seq > p.InSeq.Load() {
			p.InSeq.Store(msg.Seq)
		}

		switch msg.Type {
		case MsgHeartbeat:
			continue
		case MsgDisconnect:
			p.closeWith("remote")
			return
		}
		handler(p.ID, msg)
	}
}

// writeLoop sends queued messages and heartbeats while idle
func (p *Peer) writeLoop() {
	var tick <-chan time.Time
	if p.cfg.HeartbeatInterval > 0 {
		ticker := time.NewTicker(p.cfg.HeartbeatInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-p.closeCh:
			return
		case msg := <-p.sendCh:
			if err := p.write(msg); err != nil {
				p.closeWith("write: " + err.Error())
				return
			}
		case <-tick:
			hb := NewMessage(MsgHeartbeat, nil)
			hb.Seq = p.OutSeq.Load()
			hb.Ack = p.InSeq.Load()
			if err := p.write(hb); err != nil {
				p.closeWith("write: " + err.Error())
				return
			}
		}
	}
}

func (p *Peer) write(msg *Message) error {
	if p.cfg.WriteTimeout > 0 {
		p.io.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
	}
	return p.io.WriteMessage(msg)
}

// Handlers receive link events; each may be nil
// OnMessage runs on the peer's read goroutine
type Handlers struct {
	OnConnect    func(PeerID)
	OnDisconnect func(PeerID, string)
	OnMessage    func(PeerID, *Message)
}

// PeerManager tracks the live links of a transport and fans messages out to them
type PeerManager struct {
	cfg      *Config
	log      *zap.SugaredLogger
	handlers Handlers

	mu     sync.RWMutex
	peers  map[PeerID]*Peer
	lastID PeerID
}

// NewPeerManager creates an empty link set
func NewPeerManager(cfg *Config, log *zap.SugaredLogger) *PeerManager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PeerManager{cfg: cfg, log: log, peers: make(map[PeerID]*Peer)}
}

// SetHandlers installs the link callbacks; call before the first link
func (pm *PeerManager) SetHandlers(h Handlers) {
	pm.handlers = h
}

// AddConnection adopts a raw stream connection
func (pm *PeerManager) AddConnection(conn net.Conn) (PeerID, error) {
	return pm.add(newTCPFrames(conn, pm.cfg))
}

// add registers the link and starts its reader, writer and reaper
func (pm *PeerManager) add(fio frameIO) (PeerID, error) {
	pm.mu.Lock()
	if pm.cfg.MaxPeers > 0 && len(pm.peers) >= pm.cfg.MaxPeers {
		pm.mu.Unlock()
		fio.Close()
		return 0, ErrMaxPeers
	}
	pm.lastID++
	peer := newPeer(pm.lastID, fio, pm.cfg, pm.log)
	pm.peers[peer.ID] = peer
	pm.mu.Unlock()

	pm.log.Infow("peer connected", "peer", peer.ID, "addr", peer.Addr)
	if fn := pm.handlers.OnConnect; fn != nil {
		fn(peer.ID)
	}

	onMessage := pm.handlers.OnMessage
	if onMessage == nil {
		onMessage = func(PeerID, *Message) {}
	}
	core.Go(func() { peer.readLoop(onMessage) })
	core.Go(peer.writeLoop)
	core.Go(func() { pm.reap(peer) })
	return peer.ID, nil
}

// reap forgets the peer once its link is gone and reports why
func (pm *PeerManager) reap(peer *Peer) {
	<-peer.Done()

	pm.mu.Lock()
	delete(pm.peers, peer.ID)
	pm.mu.Unlock()

	pm.log.Infow("peer disconnected", "peer", peer.ID, "reason", peer.Reason())
	if fn := pm.handlers.OnDisconnect; fn != nil {
		fn(peer.ID, peer.Reason())
	}
}

func (pm *PeerManager) snapshot() []*Peer {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	out := make([]*Peer, 0, len(pm.peers))
	for _, p := range pm.peers {
		out = append(out, p)
	}
	return out
}

// Send queues msg for one peer
func (pm *PeerManager) Send(id PeerID, msg *Message) bool {
	pm.mu.RLock()
	peer := pm.peers[id]
	pm.mu.RUnlock()
	return peer != nil && peer.Send(msg)
}

// Broadcast queues a copy of msg per peer so each link stamps its own sequence
// Returns how many peers accepted it
func (pm *PeerManager) Broadcast(msg *Message) int {
	n := 0
	for _, peer := range pm.snapshot() {
		m := *msg
		if peer.Send(&m) {
			n++
		}
	}
	return n
}

// GetPeer retrieves a live peer
func (pm *PeerManager) GetPeer(id PeerID) (*Peer, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.peers[id]
	return p, ok
}

func (pm *PeerManager) PeerCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Close drops every link; reapers report each as "local"
func (pm *PeerManager) Close() {
	for _, peer := range pm.snapshot() {
		peer.closeWith("local")
	}
}

// dial establishes a stream connection with optional TLS
func dial(addr string, cfg *Config) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}

	if cfg.TLS != nil {
		return tls.DialWithDialer(dialer, "tcp", addr, cfg.TLS)
	}
	return dialer.Dial("tcp", addr)
}
