package network

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/lixenwraith/arena-core/parameter"
)

// Role defines the peer's side of a match
type Role uint8

const (
	RoleNone  Role = iota // Network disabled, solo match
	RoleHost              // Authoritative simulation, accepts the guest
	RoleGuest             // Sends input, applies snapshots
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleGuest:
		return "guest"
	default:
		return "none"
	}
}

// ParseRole accepts "host", "guest", "solo" or "none"
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host":
		return RoleHost, true
	case "guest", "join":
		return RoleGuest, true
	case "", "none", "solo":
		return RoleNone, true
	}
	return RoleNone, false
}

// TransportKind selects the wire carrier
type TransportKind string

const (
	TransportTCP       TransportKind = "tcp"
	TransportWebSocket TransportKind = "ws"
)

// Config holds network configuration
type Config struct {
	// Role determines connection behavior
	Role Role

	// Transport selects framed TCP or websocket
	Transport TransportKind

	// Address to bind (host) or connect to (guest)
	Address string

	// Path is the websocket upgrade path
	Path string

	// TLS configuration (nil = plaintext)
	TLS *tls.Config

	// MaxPeers bounds accepted links; a match has one guest
	MaxPeers int

	// Timing
	ConnectTimeout    time.Duration
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration
	DisconnectTimeout time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		Role:              RoleNone,
		Transport:         TransportTCP,
		Address:           parameter.DefaultAddress,
		Path:              "/arena",
		MaxPeers:          1,
		ConnectTimeout:    parameter.ConnectTimeout,
		WriteTimeout:      parameter.WriteTimeout,
		HeartbeatInterval: parameter.HeartbeatInterval,
		DisconnectTimeout: parameter.DisconnectTimeout,
		ReadBufferSize:    64 * 1024,
		WriteBufferSize:   64 * 1024,
		SendQueueSize:     parameter.SendQueueSize,
	}
}

// DebugConfig returns a plaintext config for local testing
func DebugConfig(role Role, addr string) *Config {
	cfg := DefaultConfig()
	cfg.Role = role
	cfg.Address = addr
	return cfg
}
