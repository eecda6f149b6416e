package network

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/vmath"
)

// ErrShortPayload reports a body smaller than its fixed layout
var ErrShortPayload = errors.New("short payload")

// InputPacket is the guest's normalized movement vector
type InputPacket struct {
	Seq  uint32
	Move vmath.Vec2
	Dash bool
}

const inputSize = 4 + 8 + 8 + 1

// MarshalBinary encodes [Seq:4][X:8][Y:8][Dash:1]
func (p *InputPacket) MarshalBinary() ([]byte, error) {
	b := make([]byte, inputSize)
	binary.BigEndian.PutUint32(b[0:4], p.Seq)
	putFloat(b[4:12], p.Move.X)
	putFloat(b[12:20], p.Move.Y)
	if p.Dash {
		b[20] = 1
	}
	return b, nil
}

// UnmarshalBinary decodes the fixed input layout; the vector is re-normalized
func (p *InputPacket) UnmarshalBinary(b []byte) error {
	if len(b) < inputSize {
		return ErrShortPayload
	}
	p.Seq = binary.BigEndian.Uint32(b[0:4])
	p.Move = vmath.V(getFloat(b[4:12]), getFloat(b[12:20]))
	if p.Move.LenSq() > 1 {
		p.Move = p.Move.Normalize()
	}
	if math.IsNaN(p.Move.X) || math.IsNaN(p.Move.Y) {
		p.Move = vmath.Vec2{}
	}
	p.Dash = b[20] != 0
	return nil
}

// SnapshotStats is the replicated slice of team stats
type SnapshotStats struct {
	HP    float64
	Score int32
	Wave  int32
	Level int32
}

// RotationScale is the wire resolution of rotations, steps per radian
const RotationScale = 1000

// Snapshot is one host broadcast; positions are rounded to whole units and
// rotations to milliradians
type Snapshot struct {
	Tick  uint64
	Host  entity.Transform
	Guest entity.Transform
	Stats SnapshotStats
}

const (
	transformSize = 4 + 4 + 2
	snapshotSize  = 8 + 2*transformSize + 8 + 3*4
)

// NewSnapshot rounds both transforms to their wire precision
func NewSnapshot(tick uint64, host, guest entity.Transform, stats SnapshotStats) *Snapshot {
	return &Snapshot{Tick: tick, Host: roundTransform(host), Guest: roundTransform(guest), Stats: stats}
}

func roundTransform(t entity.Transform) entity.Transform {
	return entity.Transform{
		Pos:      t.Pos.Round(),
		Rotation: float64(rotationSteps(t.Rotation)) / RotationScale,
	}
}

// rotationSteps wraps to (-pi, pi] and quantizes; the result fits an int16
func rotationSteps(r float64) int16 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return int16(math.Round(vmath.WrapAngle(r) * RotationScale))
}

// MarshalBinary encodes [Tick:8][Host][Guest][HP:8][Score:4][Wave:4][Level:4]
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	b := make([]byte, snapshotSize)
	binary.BigEndian.PutUint64(b[0:8], s.Tick)
	putTransform(b[8:], s.Host)
	putTransform(b[8+transformSize:], s.Guest)
	o := 8 + 2*transformSize
	putFloat(b[o:o+8], s.Stats.HP)
	binary.BigEndian.PutUint32(b[o+8:o+12], uint32(s.Stats.Score))
	binary.BigEndian.PutUint32(b[o+12:o+16], uint32(s.Stats.Wave))
	binary.BigEndian.PutUint32(b[o+16:o+20], uint32(s.Stats.Level))
	return b, nil
}

// UnmarshalBinary decodes the fixed snapshot layout
func (s *Snapshot) UnmarshalBinary(b []byte) error {
	if len(b) < snapshotSize {
		return ErrShortPayload
	}
	s.Tick = binary.BigEndian.Uint64(b[0:8])
	s.Host = getTransform(b[8:])
	s.Guest = getTransform(b[8+transformSize:])
	o := 8 + 2*transformSize
	s.Stats.HP = getFloat(b[o : o+8])
	s.Stats.Score = int32(binary.BigEndian.Uint32(b[o+8 : o+12]))
	s.Stats.Wave = int32(binary.BigEndian.Uint32(b[o+12 : o+16]))
	s.Stats.Level = int32(binary.BigEndian.Uint32(b[o+16 : o+20]))
	return nil
}

// MatchStart is relayed by the host so both sides build the same terrain
type MatchStart struct {
	MatchID uuid.UUID
	Seed    int64
	Mode    string
	HeroID  string
}

// MarshalBinary encodes [ID:16][Seed:8][ModeLen:1][Mode][HeroLen:1][Hero]
func (m *MatchStart) MarshalBinary() ([]byte, error) {
	if len(m.Mode) > 255 || len(m.HeroID) > 255 {
		return nil, errors.New("match start string too long")
	}
	b := make([]byte, 0, 16+8+2+len(m.Mode)+len(m.HeroID))
	b = append(b, m.MatchID[:]...)
	b = binary.BigEndian.AppendUint64(b, uint64(m.Seed))
	b = appendString(b, m.Mode)
	b = appendString(b, m.HeroID)
	return b, nil
}

// UnmarshalBinary decodes a match start body
func (m *MatchStart) UnmarshalBinary(b []byte) error {
	if len(b) < 16+8+2 {
		return ErrShortPayload
	}
	copy(m.MatchID[:], b[:16])
	m.Seed = int64(binary.BigEndian.Uint64(b[16:24]))
	rest := b[24:]
	var err error
	if m.Mode, rest, err = readString(rest); err != nil {
		return errors.Wrap(err, "mode")
	}
	if m.HeroID, _, err = readString(rest); err != nil {
		return errors.Wrap(err, "hero")
	}
	return nil
}

// MatchOver carries the final score
type MatchOver struct {
	Score  int32
	Reason string
}

// MarshalBinary encodes [Score:4][ReasonLen:1][Reason]
func (m *MatchOver) MarshalBinary() ([]byte, error) {
	if len(m.Reason) > 255 {
		return nil, errors.New("reason too long")
	}
	b := binary.BigEndian.AppendUint32(nil, uint32(m.Score))
	return appendString(b, m.Reason), nil
}

// UnmarshalBinary decodes a match over body
func (m *MatchOver) UnmarshalBinary(b []byte) error {
	if len(b) < 5 {
		return ErrShortPayload
	}
	m.Score = int32(binary.BigEndian.Uint32(b[:4]))
	var err error
	m.Reason, _, err = readString(b[4:])
	return err
}

// UpgradePick names an upgrade chosen on the guest
type UpgradePick struct {
	Name string
}

func (u *UpgradePick) MarshalBinary() ([]byte, error) {
	if len(u.Name) > 255 {
		return nil, errors.New("upgrade name too long")
	}
	return appendString(nil, u.Name), nil
}

func (u *UpgradePick) UnmarshalBinary(b []byte) error {
	var err error
	u.Name, _, err = readString(b)
	return err
}

func putFloat(b []byte, v float64) {
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
}

func getFloat(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

func putTransform(b []byte, t entity.Transform) {
	binary.BigEndian.PutUint32(b[0:4], uint32(int32(t.Pos.X)))
	binary.BigEndian.PutUint32(b[4:8], uint32(int32(t.Pos.Y)))
	binary.BigEndian.PutUint16(b[8:10], uint16(rotationSteps(t.Rotation)))
}

func getTransform(b []byte) entity.Transform {
	return entity.Transform{
		Pos: vmath.V(
			float64(int32(binary.BigEndian.Uint32(b[0:4]))),
			float64(int32(binary.BigEndian.Uint32(b[4:8]))),
		),
		Rotation: float64(int16(binary.BigEndian.Uint16(b[8:10]))) / RotationScale,
	}
}

func appendString(b []byte, s string) []byte {
	b = append(b, byte(len(s)))
	return append(b, s...)
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 1 {
		return "", nil, ErrShortPayload
	}
	n := int(b[0])
	if len(b) < 1+n {
		return "", nil, ErrShortPayload
	}
	return string(b[1 : 1+n]), b[1+n:], nil
}
