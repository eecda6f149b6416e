package parameter

import "time"

// Replication Rates
const (
	// InputSendInterval caps guest input messages (~30 Hz)
	InputSendInterval = 33 * time.Millisecond

	// StateSendInterval caps host snapshot messages (~22 Hz)
	StateSendInterval = 45 * time.Millisecond
)

// Peer Link
const (
	// DefaultAddress is the host listen address
	DefaultAddress = ":7777"

	// ConnectTimeout bounds dialing
	ConnectTimeout = 5 * time.Second

	// WriteTimeout bounds a single frame write
	WriteTimeout = 5 * time.Second

	// HeartbeatInterval keeps idle links alive
	HeartbeatInterval = 2 * time.Second

	// DisconnectTimeout closes a link silent for this long
	DisconnectTimeout = 10 * time.Second

	// SendQueueSize is the outbound frame queue per link
	SendQueueSize = 256

	// MaxPayloadSize is the largest frame payload
	MaxPayloadSize = 65535
)
