package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/arena-core/config"
	"github.com/lixenwraith/arena-core/core"
	"github.com/lixenwraith/arena-core/cue"
	"github.com/lixenwraith/arena-core/engine"
	"github.com/lixenwraith/arena-core/event"
	"github.com/lixenwraith/arena-core/ledger"
	"github.com/lixenwraith/arena-core/network"
	"github.com/lixenwraith/arena-core/parameter"
	"github.com/lixenwraith/arena-core/service"
	"github.com/lixenwraith/arena-core/status"
	"github.com/lixenwraith/arena-core/terrain"
	"github.com/lixenwraith/arena-core/view"
)

// drainFrames lets the final frames flush the match-over message before shutdown
const drainFrames = 200 * time.Millisecond

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena: %v\n", err)
		os.Exit(2)
	}

	zlog, err := setupLogging(cfg.Debug, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	if err := run(cfg, log); err != nil {
		log.Errorw("arena exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "arena: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	netCfg, err := cfg.PeerConfig()
	if err != nil {
		return err
	}
	bestiary, err := cfg.BuildBestiary()
	if err != nil {
		return err
	}
	schedule, err := cfg.BuildSchedule()
	if err != nil {
		return err
	}
	loot, err := cfg.BuildLoot()
	if err != nil {
		return err
	}
	heroes, err := cfg.BuildHeroes()
	if err != nil {
		return err
	}

	reg := status.NewRegistry()
	bus := event.NewBus(log.Named("bus"))

	netSvc := network.NewService(bus, log.Named("net"), reg)
	cueSvc := cue.NewService(log.Named("cue"))
	cueCfg := cue.DefaultConfig()
	cueCfg.Enabled = cfg.Audio

	hub := service.NewHub(log.Named("service"))
	if err := hub.Register(netSvc, netCfg); err != nil {
		return err
	}
	if err := hub.Register(cueSvc, cueCfg); err != nil {
		return err
	}
	if err := hub.InitAll(); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	// Lobby: the host waits for its guest, the guest for the host's seed
	lob := newLobby(bus, netCfg.Role)
	seed, mode, hero := cfg.Seed, cfg.Mode, cfg.HeroID
	if netCfg.Role != network.RoleNone {
		fmt.Printf("arena: %s on %s, waiting for peer...\n", netCfg.Role, netCfg.Address)
		if err := lob.wait(ctx, bus); err != nil {
			return err
		}
		if netCfg.Role == network.RoleGuest {
			seed, mode, hero = lob.start.Seed, lob.start.Mode, lob.start.HeroID
		}
	}

	mcfg := engine.MatchConfig{
		MatchID:            lob.matchID(),
		Seed:               seed,
		Mode:               mode,
		HeroID:             hero,
		Role:               netCfg.Role,
		Terrain:            terrain.DefaultConfig(),
		Director:           cfg.DirectorConfig(),
		Bestiary:           bestiary,
		Heroes:             heroes,
		Schedule:           schedule,
		Loot:               loot,
		PoolCapacity:       parameter.PoolCapacityDefault,
		BossCapacity:       parameter.PoolCapacityBoss,
		ProjectileCapacity: parameter.PoolCapacityProjectile,
		StartWave:          cfg.StartWave,
		InputInterval:      cfg.Network.InputInterval,
		StateInterval:      cfg.Network.StateInterval,
	}
	match := engine.NewMatch(mcfg, bus,
		engine.WithSender(netSvc),
		engine.WithLogger(log.Named("match")),
		engine.WithMetrics(reg),
	)
	mcfg = match.Config()

	if out := cueSvc.Output(); out != nil {
		bus.Register(cue.NewPlayer(cueSvc.Config(), out, log.Named("cue"), reg))
	}
	if cfg.Ledger != "" {
		store, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()
		rec := ledger.NewRecorder(store, mcfg.Mode, mcfg.Seed, log.Named("ledger"))
		// Drains before the store closes
		defer rec.Close()
		bus.Register(rec)
	}

	var (
		result   *event.MatchOverPayload
		overOnce sync.Once
		overCh   = make(chan struct{})
	)
	bus.Subscribe(event.EventMatchOver, func(ev event.GameEvent) {
		overOnce.Do(func() {
			result, _ = ev.Payload.(*event.MatchOverPayload)
			close(overCh)
		})
	})

	sched := engine.NewScheduler(match, nil, reg)
	// Dispatched on the first tick
	bus.Publish(event.GameEvent{Type: event.EventMatchStart, Payload: &event.MatchStartPayload{
		MatchID: mcfg.MatchID,
		Mode:    mcfg.Mode,
		HeroID:  mcfg.HeroID,
		Seed:    mcfg.Seed,
	}})

	quit := make(chan struct{}, 1)
	var screen tcell.Screen
	if cfg.View {
		screen, err = startView(sched, match, quit)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("arena: match %s seed %d role %s\n", mcfg.MatchID, mcfg.Seed, mcfg.Role)
	}

	sched.Start()

	select {
	case <-overCh:
	case <-quit:
		sched.View(func() { match.Quit() })
	case <-ctx.Done():
		sched.View(func() { match.Quit() })
	}
	<-overCh
	time.Sleep(drainFrames)
	sched.Stop()

	if screen != nil {
		screen.Fini()
		core.SetCrashTerminal(nil)
	}
	if result != nil {
		fmt.Printf("match over: %s  score %d  wave %d  level %d\n", result.Reason, result.Score, result.Wave, result.Level)
	}
	log.Infow("metrics", "snapshot", reg.Snapshot())
	return nil
}

// startView opens the terminal, draws every frame and feeds key presses to the match
func startView(sched *engine.Scheduler, match *engine.Match, quit chan<- struct{}) (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	core.SetCrashTerminal(screen)

	spec := view.New(screen)
	frame := &view.Frame{}
	sched.SetFrameHook(func() {
		sched.View(func() { view.Capture(match, frame) })
		spec.Draw(frame)
	})

	solo := match.Config().Role == network.RoleNone
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			cmd := view.HandleKey(key)
			switch cmd.Kind {
			case view.CmdMove:
				match.SetInput(cmd.Move)
			case view.CmdDash:
				match.QueueDash()
			case view.CmdUpgrade:
				match.QueueUpgrade(cmd.Upgrade)
			case view.CmdPause:
				if solo {
					sched.View(func() {
						if match.Paused() {
							match.Resume()
						} else {
							match.Pause()
						}
					})
				}
			case view.CmdQuit:
				select {
				case quit <- struct{}{}:
				default:
				}
				return
			}
		}
	})
	return screen, nil
}
