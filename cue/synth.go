package cue

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType selects the voice waveform
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// shapes evaluate a periodic waveform at phase in [0, 1)
var shapes = [...]func(phase float64) float64{
	WaveSine: func(p float64) float64 { return math.Sin(2 * math.Pi * p) },
	WaveSquare: func(p float64) float64 {
		if p < 0.5 {
			return 1
		}
		return -1
	},
	WaveSaw: func(p float64) float64 { return 2*p - 1 },
}

// voice is a finite mono tone duplicated to both channels
// Frequency glides linearly by slope per sample
type voice struct {
	freq  float64
	slope float64
	phase float64
	left  int
	rate  float64
	shape func(float64) float64
	noise *rand.Rand
}

// NewOscillator creates a constant-frequency voice lasting duration
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep creates a voice gliding from one frequency to another over duration
// Noise is seeded from its parameters so a cue sounds the same every time
func NewSweep(from, to float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	n := rate.N(duration)
	v := &voice{freq: from, left: n, rate: float64(rate)}
	if n > 0 {
		v.slope = (to - from) / float64(n)
	}
	switch {
	case wave == WaveNoise:
		v.noise = rand.New(rand.NewSource(int64(from*1000) + int64(n)))
	case int(wave) >= 0 && int(wave) < len(shapes) && shapes[wave] != nil:
		v.shape = shapes[wave]
	default:
		v.shape = shapes[WaveSine]
	}
	return v
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) && v.left > 0 {
		var x float64
		if v.noise != nil {
			x = v.noise.Float64()*2 - 1
		} else {
			x = v.shape(v.phase)
		}
		samples[n] = [2]float64{x, x}

		v.phase += v.freq / v.rate
		v.phase -= math.Floor(v.phase)
		v.freq += v.slope
		v.left--
		n++
	}
	return n, n > 0
}

func (v *voice) Err() error { return nil }

// shaper applies a linear attack, flat sustain and linear release over total samples
type shaper struct {
	src     beep.Streamer
	pos     int
	attack  int
	release int
	total   int
}

// NewEnvelope gates s to duration with the given attack and release ramps
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &shaper{
		src:     s,
		attack:  rate.N(attack),
		release: rate.N(release),
		total:   rate.N(duration),
	}
}

func (s *shaper) gain(pos int) float64 {
	switch {
	case pos < s.attack:
		return float64(pos) / float64(s.attack)
	case s.release > 0 && pos >= s.total-s.release:
		return math.Max(0, float64(s.total-pos)/float64(s.release))
	}
	return 1
}

func (s *shaper) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.src.Stream(samples)
	for i := 0; i < n; i++ {
		if s.pos >= s.total {
			return i, i > 0
		}
		g := s.gain(s.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		s.pos++
	}
	return n, ok
}

func (s *shaper) Err() error { return s.src.Err() }

// newVolume scales linearly; zero volume is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is one plucked note: a short attack and a release over its second half
func tone(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}
