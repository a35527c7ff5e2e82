package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// InputLatch collects input from other goroutines between ticks. Held state
// (move, aim, fire) is sampled as-is; presses latch until the next Drain.
type InputLatch struct {
	mu      sync.Mutex
	move    physics.Vec2
	aim     physics.Vec2
	firing  bool
	pressed bool
	start   bool
}

func NewInputLatch() *InputLatch {
	return &InputLatch{}
}

// SetIntent replaces the held movement, aim and fire state.
func (l *InputLatch) SetIntent(move, aim physics.Vec2, fire bool) {
	l.mu.Lock()
	l.move, l.aim, l.firing = move, aim, fire
	if fire {
		l.pressed = true
	}
	l.mu.Unlock()
}

// PressFire latches a single shot request.
func (l *InputLatch) PressFire() {
	l.mu.Lock()
	l.pressed = true
	l.mu.Unlock()
}

// PressStart latches the start/restart signal.
func (l *InputLatch) PressStart() {
	l.mu.Lock()
	l.start = true
	l.mu.Unlock()
}

// Drain returns the input for one tick and clears the latched presses.
func (l *InputLatch) Drain() Input {
	l.mu.Lock()
	defer l.mu.Unlock()

	in := Input{
		Move:  l.move,
		Aim:   l.aim,
		Fire:  l.firing || l.pressed,
		Start: l.start,
	}
	l.pressed = false
	l.start = false
	return in
}

// Loop drives a Simulation at its fixed tick rate from wall-clock time and
// publishes each post-tick snapshot for concurrent readers.
type Loop struct {
	sim        *Simulation
	latch      *InputLatch
	logger     log.Log
	step       time.Duration
	maxCatchUp int

	accumulated time.Duration
	snapshot    atomic.Pointer[Snapshot]
	dropped     atomic.Uint64
}

func NewLoop(sim *Simulation, latch *InputLatch, logger log.Log) *Loop {
	cfg := sim.Config().Simulation
	l := &Loop{
		sim:        sim,
		latch:      latch,
		logger:     logger.With(log.String("component", "loop")),
		step:       time.Duration(float64(time.Second) / cfg.TickRate),
		maxCatchUp: cfg.MaxCatchUpTicks,
	}
	snap := sim.Snapshot()
	l.snapshot.Store(&snap)
	return l
}

// Advance runs as many ticks as elapsed covers, at most MaxCatchUpTicks.
// Backlog beyond that is dropped so a stall does not spiral.
func (l *Loop) Advance(elapsed time.Duration) int {
	l.accumulated += elapsed

	ticks := 0
	for l.accumulated >= l.step && ticks < l.maxCatchUp {
		snap, err := l.sim.Step(l.latch.Drain())
		if err != nil {
			l.logger.Warn("Tick completed with errors",
				log.Uint64("tick", snap.Tick),
				log.Error(err))
		}
		l.snapshot.Store(&snap)
		l.accumulated -= l.step
		ticks++
	}

	if l.accumulated >= l.step {
		behind := uint64(l.accumulated / l.step)
		l.dropped.Add(behind)
		l.logger.Warn("Simulation behind, dropping ticks",
			log.Uint64("dropped", behind),
			log.Duration("backlog", l.accumulated))
		l.accumulated %= l.step
	}
	return ticks
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	l.logger.Info("Loop started", log.Duration("tick", l.step))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Loop stopped", log.Uint64("dropped_ticks", l.dropped.Load()))
			return nil
		case now := <-ticker.C:
			l.Advance(now.Sub(last))
			last = now
		}
	}
}

// Snapshot returns the latest published snapshot. Safe for concurrent use.
func (l *Loop) Snapshot() *Snapshot {
	return l.snapshot.Load()
}

// Latch is the input intake feeding the next ticks.
func (l *Loop) Latch() *InputLatch { return l.latch }

// Dropped returns how many ticks were skipped to catch up.
func (l *Loop) Dropped() uint64 { return l.dropped.Load() }
