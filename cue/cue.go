// Package cue turns match events into synthesized sound cues
package cue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/status"
)

// Kind names one cue
type Kind int

const (
	CueWaveStart Kind = iota // Rising chord
	CueEliteWave             // Low saw chord
	CueKill                  // Short blip
	CueBossKill              // Noise burst into a low tone
	CueLevelUp               // Two-note chime
	CuePowerup               // Upward sweep
	CueExtract               // Three-note arpeggio
	CueMatchOver             // Downward sweep
	cueCount
)

var cueNames = [cueCount]string{
	CueWaveStart: "wave_start",
	CueEliteWave: "elite_wave",
	CueKill:      "kill",
	CueBossKill:  "boss_kill",
	CueLevelUp:   "level_up",
	CuePowerup:   "powerup",
	CueExtract:   "extract",
	CueMatchOver: "match_over",
}

func (k Kind) String() string {
	if k >= 0 && k < cueCount {
		return cueNames[k]
	}
	return "unknown"
}

// Config holds cue volumes and the output rate
type Config struct {
	Enabled      bool
	MasterVolume float64
	SampleRate   int
	Volumes      [cueCount]float64
}

// DefaultConfig returns enabled cues at moderate volume
func DefaultConfig() *Config {
	cfg := &Config{Enabled: true, MasterVolume: 0.5, SampleRate: 44100}
	for i := range cfg.Volumes {
		cfg.Volumes[i] = 1
	}
	cfg.Volumes[CueKill] = 0.4
	return cfg
}

// Build synthesizes the streamer for kind; nil for unknown kinds
func Build(kind Kind, cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	var s beep.Streamer
	switch kind {
	case CueWaveStart:
		d := 250 * time.Millisecond
		s = beep.Mix(
			newVolume(tone(523.25, d, WaveSine, rate), 0.5),
			newVolume(tone(659.25, d, WaveSine, rate), 0.3),
			newVolume(tone(783.99, d, WaveSine, rate), 0.2),
		)
	case CueEliteWave:
		d := 400 * time.Millisecond
		s = beep.Mix(
			newVolume(tone(110, d, WaveSaw, rate), 0.6),
			newVolume(tone(164.81, d, WaveSaw, rate), 0.4),
		)
	case CueKill:
		s = tone(1200, 40*time.Millisecond, WaveSquare, rate)
	case CueBossKill:
		noise := 200 * time.Millisecond
		s = beep.Seq(
			NewEnvelope(NewOscillator(0, noise, WaveNoise, rate), noise, time.Millisecond, 150*time.Millisecond, rate),
			tone(82.41, 300*time.Millisecond, WaveSine, rate),
		)
	case CueLevelUp:
		s = beep.Seq(
			tone(987.77, 80*time.Millisecond, WaveSquare, rate),
			tone(1318.51, 200*time.Millisecond, WaveSquare, rate),
		)
	case CuePowerup:
		d := 180 * time.Millisecond
		s = NewEnvelope(NewSweep(400, 1600, d, WaveSine, rate), d, 5*time.Millisecond, 60*time.Millisecond, rate)
	case CueExtract:
		s = beep.Seq(
			tone(523.25, 90*time.Millisecond, WaveSine, rate),
			tone(659.25, 90*time.Millisecond, WaveSine, rate),
			tone(1046.5, 250*time.Millisecond, WaveSine, rate),
		)
	case CueMatchOver:
		d := 900 * time.Millisecond
		s = NewEnvelope(NewSweep(660, 110, d, WaveSaw, rate), d, 10*time.Millisecond, 400*time.Millisecond, rate)
	default:
		return nil
	}
	return newVolume(s, cfg.Volumes[kind]*cfg.MasterVolume)
}

// Output consumes finished streamers
type Output interface {
	Play(s beep.Streamer)
}

// Speaker plays through the system audio device via a shared mixer
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker initializes the audio device at rate
func NewSpeaker(rate int) (*Speaker, error) {
	sr := beep.SampleRate(rate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	s := &Speaker{mixer: &beep.Mixer{}, initialized: true}
	speaker.Play(s.mixer)
	return s, nil
}

// Play adds s to the mixer
func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences the mixer; beep has no speaker teardown
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Player maps bus events to cues and sends them to an Output
// Registered on the bus, it runs on the dispatching goroutine
type Player struct {
	cfg    *Config
	out    Output
	log    *zap.SugaredLogger
	played *atomic.Int64
	level  int
}

// NewPlayer creates a cue player; log and reg may be nil
func NewPlayer(cfg *Config, out Output, log *zap.SugaredLogger, reg *status.Registry) *Player {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Player{cfg: cfg, out: out, log: log, played: reg.Counter("cue.played"), level: 1}
}

func (p *Player) EventTypes() []event.EventType {
	return []event.EventType{
		event.EventWaveStart,
		event.EventEnemyKilled,
		event.EventStatsUpdate,
		event.EventPowerupChanged,
		event.EventExtractionSuccess,
		event.EventMatchOver,
	}
}

func (p *Player) HandleEvent(ev event.GameEvent) {
	switch pl := ev.Payload.(type) {
	case *event.WaveStartPayload:
		if pl.IsElite {
			p.Play(CueEliteWave)
		} else {
			p.Play(CueWaveStart)
		}
	case *event.EnemyKilledPayload:
		if pl.Boss {
			p.Play(CueBossKill)
		} else {
			p.Play(CueKill)
		}
	case *event.StatsUpdatePayload:
		if pl.Level > p.level {
			p.Play(CueLevelUp)
		}
		p.level = pl.Level
	case *event.PowerupPayload:
		if pl.Active {
			p.Play(CuePowerup)
		}
	case *event.ExtractionSuccessPayload:
		p.Play(CueExtract)
	case *event.MatchOverPayload:
		p.Play(CueMatchOver)
	}
}

// Play emits one cue when enabled
func (p *Player) Play(kind Kind) {
	if !p.cfg.Enabled || p.out == nil {
		return
	}
	s := Build(kind, p.cfg)
	if s == nil {
		return
	}
	p.out.Play(s)
	p.played.Add(1)
	p.log.Debugw("cue", "kind", kind)
}
