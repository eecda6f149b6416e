package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/core"
)

// Transport owns the listener or dialer of one match role and its links
type Transport struct {
	config   *Config
	log      *zap.SugaredLogger
	listener net.Listener
	server   *http.Server
	peers    *PeerManager

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewTransport creates an idle transport
func NewTransport(cfg *Config, log *zap.SugaredLogger) *Transport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Transport{
		config: cfg,
		log:    log,
		peers:  NewPeerManager(cfg, log),
	}
}

// SetHandlers installs link callbacks; call before Start
func (t *Transport) SetHandlers(
	onConnect func(PeerID),
	onDisconnect func(PeerID, string),
	onMessage func(PeerID, *Message),
) {
	t.peers.SetHandlers(Handlers{OnConnect: onConnect, OnDisconnect: onDisconnect, OnMessage: onMessage})
}

// Start listens as host or dials as guest; RoleNone does nothing
func (t *Transport) Start() error {
	if t.config.Role == RoleNone || !t.running.CompareAndSwap(false, true) {
		return nil
	}
	start := t.startGuest
	if t.config.Role == RoleHost {
		start = t.startHost
	}
	if err := start(); err != nil {
		t.running.Store(false)
		return err
	}
	return nil
}

// startHost binds and accepts the guest
func (t *Transport) startHost() error {
	var ln net.Listener
	var err error

	if t.config.TLS != nil {
		ln, err = tls.Listen("tcp", t.config.Address, t.config.TLS)
	} else {
		ln, err = net.Listen("tcp", t.config.Address)
	}
	if err != nil {
		return errors.Wrapf(err, "listen %s", t.config.Address)
	}
	t.listener = ln
	t.log.Infow("host listening", "addr", ln.Addr().String(), "transport", t.config.Transport)

	if t.config.Transport == TransportWebSocket {
		mux := http.NewServeMux()
		mux.Handle(t.config.Path, t.Handler())
		t.server = &http.Server{Handler: mux, ReadHeaderTimeout: t.config.ConnectTimeout}
		t.wg.Add(1)
		core.Go(func() {
			defer t.wg.Done()
			if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				t.log.Warnw("websocket server stopped", "error", err)
			}
		})
		return nil
	}

	t.wg.Add(1)
	core.Go(t.acceptLoop)
	return nil
}

// acceptLoop adopts incoming links until the listener closes
func (t *Transport) acceptLoop() {
	defer t.wg.Done()

	backoff := 5 * time.Millisecond
	for {
		conn, err := t.listener.Accept()
		switch {
		case err == nil:
			backoff = 5 * time.Millisecond
			if _, err := t.peers.AddConnection(conn); err != nil {
				t.log.Warnw("connection rejected", "addr", conn.RemoteAddr().String(), "error", err)
			}
		case errors.Is(err, net.ErrClosed) || !t.running.Load():
			return
		default:
			t.log.Debugw("accept failed", "error", err, "retry", backoff)
			time.Sleep(backoff)
			backoff = min(backoff*2, time.Second)
		}
	}
}

// startGuest connects to the host
func (t *Transport) startGuest() error {
	if t.config.Transport == TransportWebSocket {
		scheme := "ws://"
		if t.config.TLS != nil {
			scheme = "wss://"
		}
		conn, err := dialWS(scheme+t.config.Address+t.config.Path, t.config)
		if err != nil {
			return err
		}
		_, err = t.peers.add(newWSFrames(conn))
		return err
	}

	conn, err := dial(t.config.Address, t.config)
	if err != nil {
		return errors.Wrapf(err, "dial %s", t.config.Address)
	}
	_, err = t.peers.AddConnection(conn)
	return err
}

// Attach adopts an established stream connection, bypassing listen and dial
func (t *Transport) Attach(conn net.Conn) (PeerID, error) {
	t.running.Store(true)
	return t.peers.AddConnection(conn)
}

// Handler returns the websocket upgrade endpoint
func (t *Transport) Handler() http.Handler {
	return newWSHandler(t.peers, t.config)
}

// Addr returns the bound listen address, empty before Start
func (t *Transport) Addr() string {
	if t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

// Stop closes the listener and every link, then waits for the accept side
func (t *Transport) Stop() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil
	}
	var err error
	switch {
	case t.server != nil:
		err = t.server.Close()
	case t.listener != nil:
		err = t.listener.Close()
	}
	t.peers.Close()
	t.wg.Wait()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return errors.Wrap(err, "close listener")
	}
	return nil
}

// Send queues msg for one peer
func (t *Transport) Send(id PeerID, msg *Message) bool {
	return t.peers.Send(id, msg)
}

// Broadcast queues msg for every peer
func (t *Transport) Broadcast(msg *Message) int {
	return t.peers.Broadcast(msg)
}

func (t *Transport) PeerCount() int {
	return t.peers.PeerCount()
}

func (t *Transport) IsRunning() bool {
	return t.running.Load()
}
