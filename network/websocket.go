package network

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// wsFrames carries one message per binary websocket frame
type wsFrames struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func newWSFrames(conn *websocket.Conn) *wsFrames {
	return &wsFrames{conn: conn}
}

func (f *wsFrames) ReadMessage() (*Message, error) {
	for {
		kind, data, err := f.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		return Decode(bytes.NewReader(data))
	}
}

func (f *wsFrames) WriteMessage(msg *Message) error {
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		return err
	}
	f.wmu.Lock()
	defer f.wmu.Unlock()
	return f.conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}

func (f *wsFrames) SetReadDeadline(t time.Time) error  { return f.conn.SetReadDeadline(t) }
func (f *wsFrames) SetWriteDeadline(t time.Time) error { return f.conn.SetWriteDeadline(t) }
func (f *wsFrames) RemoteAddr() string                 { return f.conn.RemoteAddr().String() }

// Close sends a close frame; WriteControl may run alongside WriteMessage
func (f *wsFrames) Close() error {
	f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return f.conn.Close()
}

// wsHandler upgrades requests and hands the link to the peer manager
type wsHandler struct {
	peers    *PeerManager
	upgrader websocket.Upgrader
}

func newWSHandler(pm *PeerManager, cfg *Config) *wsHandler {
	return &wsHandler{
		peers: pm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.peers.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	if _, err := h.peers.add(newWSFrames(conn)); err != nil {
		h.peers.log.Warnw("websocket peer rejected", "error", err)
	}
}

// dialWS connects to a host websocket endpoint
func dialWS(url string, cfg *Config) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.ConnectTimeout,
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		TLSClientConfig:  cfg.TLS,
	}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return conn, nil
}
