package cue

import (
	"sync"

	"go.uber.org/zap"
)

// Service opens the audio device for cue playback
// A missing device is not fatal: the match continues silently
type Service struct {
	mu      sync.Mutex
	cfg     *Config
	log     *zap.SugaredLogger
	speaker *Speaker
}

// NewService creates the audio service; log may be nil
func NewService(log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{cfg: DefaultConfig(), log: log}
}

func (s *Service) Name() string           { return "cue" }
func (s *Service) Dependencies() []string { return nil }

// Init implements service.Service
// args[0]: *Config (optional)
func (s *Service) Init(args ...any) error {
	if len(args) > 0 {
		if cfg, ok := args[0].(*Config); ok && cfg != nil {
			s.cfg = cfg
		}
	}
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Enabled || s.speaker != nil {
		return nil
	}
	sp, err := NewSpeaker(s.cfg.SampleRate)
	if err != nil {
		s.log.Warnw("audio device unavailable, continuing without cues", "error", err)
		return nil
	}
	s.speaker = sp
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speaker != nil {
		s.speaker.Close()
		s.speaker = nil
	}
	return nil
}

// Config returns the active cue configuration
func (s *Service) Config() *Config { return s.cfg }

// Output returns the speaker, or nil when audio is off
func (s *Service) Output() Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speaker == nil {
		return nil
	}
	return s.speaker
}
