package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/events/bus"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// Simulation owns the world, the resources and the state machine, and advances
// them one fixed tick per Step. It is not safe for concurrent use; Loop is its
// only driver in the binary.
type Simulation struct {
	cfg      config.Config
	world    *World
	res      *Resources
	fsm      *StateMachine
	pipeline *systems.Pipeline[*Context]
	bus      bus.EventBus
	logger   log.Log
	rng      *rand.Rand
	observer eventLogger
	died     bus.Subscription

	tick     uint64
	ctx      *Context
	snapshot Snapshot
}

// NewSimulation validates cfg and assembles the tick pipeline. The simulation
// starts in MainMenu with an empty world.
func NewSimulation(cfg config.Config, eventBus bus.EventBus, logger log.Log) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "simulation"))

	s := &Simulation{
		cfg:      cfg,
		world:    NewWorld(),
		res:      &Resources{},
		fsm:      NewStateMachine(),
		pipeline: systems.NewPipeline[*Context](),
		bus:      eventBus,
		logger:   logger,
		rng:      rand.New(rand.NewPCG(cfg.Simulation.Seed, cfg.Simulation.Seed^0x9e3779b97f4a7c15)),
		observer: eventLogger{logger: logger},
	}

	for _, sys := range []systems.Func[*Context]{
		systems.NewFunc("player.control", controlPlayer),
		systems.NewFunc("movement", integrateMovement),
		systems.NewFunc("player.aim", aimWeapon),
		systems.NewFunc("player.fire", fireWeapon),
		systems.NewFunc("enemy.steer", steerEnemies),
		systems.NewFunc("enemy.cull", cullEnemies),
		systems.NewFunc("projectile.range", cullProjectiles),
		systems.NewFunc("combat", resolveProjectiles),
		systems.NewFunc("player.defense", defendPlayer),
		systems.NewFunc("knockback", applyKnockback),
		systems.NewFunc("pickup", collectGems),
		systems.NewFunc("rift.open", openRifts),
		systems.NewFunc("rift.release", releaseEnemies),
		systems.NewFunc("death", resolveDeaths),
	} {
		if err := s.pipeline.Register(sys); err != nil {
			return nil, err
		}
	}
	s.pipeline.OnSystemError(func(name string, err error) {
		s.logger.Error("System failed",
			log.String("system", name),
			log.Uint64("tick", s.tick),
			log.Error(err))
	})

	died, err := eventBus.Subscribe(EventPlayerDied, func(bus.Event) error {
		return s.fsm.Request(StateGameOver)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", EventPlayerDied, err)
	}
	s.died = died
	eventBus.AddObserver(s.observer)

	s.fsm.OnEnter(StateInGame, s.startRun)
	s.fsm.OnExit(StateInGame, func() {
		s.logger.Info("Run ended",
			log.String("run_id", s.res.RunID),
			log.Int("score", s.res.Score),
			log.Float64("experience", s.res.Experience),
			log.Uint64("tick", s.tick))
	})
	s.fsm.OnTransition(func(from, to GameState) {
		s.logger.Info("State changed",
			log.String("from", from.String()),
			log.String("to", to.String()),
			log.Uint64("tick", s.tick))
		s.ctx.Emit("state", EventStateChanged, StateChanged{From: from, To: to})
	})

	s.ctx = s.newContext(Input{})
	s.snapshot = takeSnapshot(0, s.fsm.Current(), s.world, s.res)
	return s, nil
}

func (s *Simulation) newContext(in Input) *Context {
	return &Context{
		Tick:   s.tick,
		DT:     s.cfg.TickDuration(),
		Input:  in,
		World:  s.world,
		Res:    s.res,
		Config: &s.cfg,
		Rand:   s.rng,
		Bus:    s.bus,
		Logger: s.logger,
	}
}

// startRun wipes the world and resources and spawns a fresh player and weapon.
func (s *Simulation) startRun() {
	s.world.Reset()
	*s.res = Resources{
		RunID:        uuid.NewString(),
		RiftTimer:    NewTimer(s.cfg.Rift.Interval, TimerRepeating),
		PlayerHealth: Health{Current: s.cfg.Player.Health, Max: s.cfg.Player.Health},
	}
	s.res.Player = s.world.SpawnPlayer(s.cfg.Player, physics.Zero)
	s.res.Weapon = s.world.SpawnWeapon(s.cfg.Weapon, physics.Zero)

	s.logger.Info("Run started", log.String("run_id", s.res.RunID))
	s.ctx.Emit("state", EventPlayerHealthChanged, PlayerHealthChanged{
		Current: s.res.PlayerHealth.Current,
		Max:     s.res.PlayerHealth.Max,
	})
}

// Step advances the simulation by one tick. The gameplay pipeline runs only in
// InGame; deferred commands and pending transitions are applied at the end.
// A Start signal triggers at most one transition per Step.
func (s *Simulation) Step(in Input) (Snapshot, error) {
	s.tick++
	s.ctx = s.newContext(in)

	if in.Start {
		switch s.fsm.Current() {
		case StateMainMenu:
			_ = s.fsm.Request(StateInGame)
		case StateGameOver:
			_ = s.fsm.Request(StateMainMenu)
		}
	}

	var runErr error
	if s.fsm.Current() == StateInGame {
		runErr = s.pipeline.Run(s.ctx)
	}

	s.world.Commands.Apply()
	if h, ok := s.world.Healths.Get(s.res.Player); ok {
		s.res.PlayerHealth = *h
	}

	_, fsmErr := s.fsm.Apply()

	s.snapshot = takeSnapshot(s.tick, s.fsm.Current(), s.world, s.res)
	return s.snapshot, errors.Join(runErr, s.ctx.Err(), fsmErr)
}

// Close detaches the simulation from the event bus.
func (s *Simulation) Close() error {
	s.bus.RemoveObserver(s.observer)
	return s.bus.Unsubscribe(s.died)
}

func (s *Simulation) State() GameState { return s.fsm.Current() }

func (s *Simulation) World() *World { return s.world }

// Resources exposes the live run resources. Callers must not retain it across Steps.
func (s *Simulation) Resources() *Resources { return s.res }

func (s *Simulation) Snapshot() Snapshot { return s.snapshot }

func (s *Simulation) Pipeline() *systems.Pipeline[*Context] { return s.pipeline }

func (s *Simulation) Config() config.Config { return s.cfg }
