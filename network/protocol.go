package network

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/parameter"
)

// MessageType identifies the semantic meaning of a message
type MessageType uint8

const (
	// Control messages
	MsgHeartbeat  MessageType = 0x01
	MsgDisconnect MessageType = 0x03

	// Replication
	MsgInput MessageType = 0x10 // Guest movement vector
	MsgState MessageType = 0x11 // Host snapshot of both players and stats

	// Match lifecycle
	MsgMatchStart MessageType = 0x20
	MsgMatchOver  MessageType = 0x21
	MsgUpgrade    MessageType = 0x22 // Guest upgrade pick relayed to the host
)

func (t MessageType) String() string {
	switch t {
	case MsgHeartbeat:
		return "heartbeat"
	case MsgDisconnect:
		return "disconnect"
	case MsgInput:
		return "input"
	case MsgState:
		return "state"
	case MsgMatchStart:
		return "match_start"
	case MsgMatchOver:
		return "match_over"
	case MsgUpgrade:
		return "upgrade"
	default:
		return "unknown"
	}
}

// HeaderSize is the fixed frame header
// [Type:1][Flags:1][Seq:4][Ack:4][Len:2], big-endian
const HeaderSize = 12

// FlagNone is the only flag value in use; the byte is reserved
const FlagNone uint8 = 0x00

// ErrPayloadTooLarge rejects frames that cannot be length-prefixed
var ErrPayloadTooLarge = errors.New("payload exceeds maximum size")

// Message is one framed unit on the peer link
type Message struct {
	Type    MessageType
	Flags   uint8
	Seq     uint32 // Sender's sequence number
	Ack     uint32 // Last sequence the sender received
	Payload []byte
}

// NewMessage wraps payload; Seq and Ack are stamped by the peer on send
func NewMessage(t MessageType, payload []byte) *Message {
	return &Message{Type: t, Payload: payload}
}

// Encode writes header and payload with a single Write
func (m *Message) Encode(w io.Writer) error {
	if len(m.Payload) > parameter.MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	frame := make([]byte, HeaderSize, HeaderSize+len(m.Payload))
	frame[0] = byte(m.Type)
	frame[1] = m.Flags
	binary.BigEndian.PutUint32(frame[2:], m.Seq)
	binary.BigEndian.PutUint32(frame[6:], m.Ack)
	binary.BigEndian.PutUint16(frame[10:], uint16(len(m.Payload)))
	frame = append(frame, m.Payload...)
	_, err := w.Write(frame)
	return err
}

// Decode reads exactly one frame from r
func Decode(r io.Reader) (*Message, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	m := &Message{
		Type:  MessageType(hdr[0]),
		Flags: hdr[1],
		Seq:   binary.BigEndian.Uint32(hdr[2:]),
		Ack:   binary.BigEndian.Uint32(hdr[6:]),
	}
	if n := binary.BigEndian.Uint16(hdr[10:]); n > 0 {
		m.Payload = make([]byte, n)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, errors.Wrap(err, "truncated payload")
		}
	}
	return m, nil
}
