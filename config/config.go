// Package config layers runtime settings: defaults, YAML file, ARENA_ environment, flags
package config

import (
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/parameter"
)

// EnvPrefix namespaces every environment variable
const EnvPrefix = "ARENA_"

// Config is the runtime configuration of one arena process
type Config struct {
	Role      string `yaml:"role" env:"ROLE"`           // host, guest or solo
	Transport string `yaml:"transport" env:"TRANSPORT"` // tcp or ws
	Address   string `yaml:"address" env:"ADDR"`
	Path      string `yaml:"path" env:"WS_PATH"`

	Seed      int64  `yaml:"seed" env:"SEED"`
	Mode      string `yaml:"mode" env:"MODE"`
	HeroID    string `yaml:"hero" env:"HERO"`
	StartWave int    `yaml:"start_wave" env:"START_WAVE"`

	Debug  bool   `yaml:"debug" env:"DEBUG"`
	LogDir string `yaml:"log_dir" env:"LOG_DIR"`
	Audio  bool   `yaml:"audio" env:"AUDIO"`
	View   bool   `yaml:"view" env:"VIEW"`
	Ledger string `yaml:"ledger" env:"LEDGER"` // SQLite path; empty disables

	Network NetworkConfig `yaml:"network" envPrefix:"NET_"`
	Waves   WaveConfig    `yaml:"waves" envPrefix:"WAVE_"`

	// Data overrides, file only
	Bestiary []ArchetypeConfig `yaml:"bestiary"`
	Schedule []BucketConfig    `yaml:"schedule"`
	Loot     []LootConfig      `yaml:"loot"`
	Heroes   []HeroConfig      `yaml:"heroes"`
}

// NetworkConfig tunes the peer link
type NetworkConfig struct {
	ConnectTimeout    time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
	HeartbeatInterval time.Duration `yaml:"heartbeat" env:"HEARTBEAT"`
	DisconnectTimeout time.Duration `yaml:"disconnect_timeout" env:"DISCONNECT_TIMEOUT"`
	InputInterval     time.Duration `yaml:"input_interval" env:"INPUT_INTERVAL"`
	StateInterval     time.Duration `yaml:"state_interval" env:"STATE_INTERVAL"`
}

// WaveConfig tunes director pacing
type WaveConfig struct {
	BaseCount     int           `yaml:"base_count" env:"BASE_COUNT"`
	PerWave       int           `yaml:"per_wave" env:"PER_WAVE"`
	EliteEvery    int           `yaml:"elite_every" env:"ELITE_EVERY"`
	Cadence       time.Duration `yaml:"cadence" env:"CADENCE"`
	EliteCadence  time.Duration `yaml:"elite_cadence" env:"ELITE_CADENCE"`
	CompleteDelay time.Duration `yaml:"complete_delay" env:"COMPLETE_DELAY"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Role:      "solo",
		Transport: "tcp",
		Address:   parameter.DefaultAddress,
		Path:      "/arena",
		Mode:      "coop",
		HeroID:    entity.HeroVanguard,
		StartWave: 1,
		LogDir:    "logs",
		Network: NetworkConfig{
			ConnectTimeout:    parameter.ConnectTimeout,
			HeartbeatInterval: parameter.HeartbeatInterval,
			DisconnectTimeout: parameter.DisconnectTimeout,
			InputInterval:     parameter.InputSendInterval,
			StateInterval:     parameter.StateSendInterval,
		},
		Waves: WaveConfig{
			BaseCount:     parameter.WaveBaseCount,
			PerWave:       parameter.WaveCountPerWave,
			EliteEvery:    parameter.WaveEliteEvery,
			Cadence:       parameter.WaveCadence,
			EliteCadence:  parameter.WaveEliteCadence,
			CompleteDelay: parameter.WaveCompleteDelay,
		},
	}
}

// LoadFile overlays a YAML document onto cfg; a missing path is not an error
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read config %s", path)
	}
	return Decode(cfg, data)
}

// Decode overlays YAML bytes onto cfg
func Decode(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parse config")
	}
	return nil
}

// LoadEnv overlays ARENA_* variables onto cfg
func LoadEnv(cfg *Config) error {
	return loadEnv(cfg, nil)
}

func loadEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Load builds the effective configuration: defaults, file, environment, then flags
// args excludes the program name
func Load(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	path := fs.String("config", os.Getenv(EnvPrefix+"CONFIG"), "YAML config file")
	// First pass only finds -config; the rest are re-applied after env
	bind(fs, &Config{})
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if err := LoadFile(&cfg, *path); err != nil {
		return cfg, err
	}
	if err := LoadEnv(&cfg); err != nil {
		return cfg, err
	}

	fs = flag.NewFlagSet("arena", flag.ContinueOnError)
	fs.String("config", *path, "YAML config file")
	bind(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// bind registers flags whose defaults are cfg's current values
func bind(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Role, "role", cfg.Role, "host, guest or solo")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "tcp or ws")
	fs.StringVar(&cfg.Address, "addr", cfg.Address, "listen (host) or dial (guest) address")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed, 0 for random")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "match mode")
	fs.StringVar(&cfg.HeroID, "hero", cfg.HeroID, "hero id")
	fs.IntVar(&cfg.StartWave, "wave", cfg.StartWave, "first wave")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "write debug logs to the log directory")
	fs.BoolVar(&cfg.Audio, "audio", cfg.Audio, "play event cues")
	fs.BoolVar(&cfg.View, "view", cfg.View, "terminal spectator view")
	fs.StringVar(&cfg.Ledger, "ledger", cfg.Ledger, "SQLite ledger path")
}

// Validate rejects settings the match cannot run with
func (c *Config) Validate() error {
	switch c.Role {
	case "host", "guest", "join", "solo", "none", "":
	default:
		return errors.Errorf("unknown role %q", c.Role)
	}
	switch c.Transport {
	case "tcp", "ws":
	default:
		return errors.Errorf("unknown transport %q", c.Transport)
	}
	if c.StartWave < 1 {
		return errors.Errorf("start wave %d below 1", c.StartWave)
	}
	if c.Waves.BaseCount < 0 || c.Waves.PerWave < 0 {
		return errors.New("wave counts must not be negative")
	}
	if c.Waves.Cadence <= 0 || c.Waves.EliteCadence <= 0 {
		return errors.New("wave cadence must be positive")
	}
	return nil
}
