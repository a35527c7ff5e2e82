package game

import "time"

type TimerMode uint8

const (
	TimerOnce TimerMode = iota
	TimerRepeating
)

// Timer is a cooperative countdown advanced by the tick duration.
// Tick reports the firing edge; Finished reports the settled state of a one-shot timer.
type Timer struct {
	Duration  float64
	Remaining float64
	Mode      TimerMode
	finished  bool
}

func NewTimer(d time.Duration, mode TimerMode) Timer {
	s := seconds(d)
	return Timer{Duration: s, Remaining: s, Mode: mode}
}

// FinishedTimer returns a one-shot timer that is already done.
func FinishedTimer(d time.Duration) Timer {
	t := NewTimer(d, TimerOnce)
	t.Remaining = 0
	t.finished = true
	return t
}

// Tick advances the timer by dt seconds and returns how many times it fired.
// One-shot timers fire at most once; repeating timers carry the overshoot into
// the next period and may fire more than once when dt exceeds the duration.
func (t *Timer) Tick(dt float64) int {
	if t.finished {
		return 0
	}

	t.Remaining -= dt
	if t.Remaining > 0 {
		return 0
	}

	if t.Mode == TimerOnce {
		t.Remaining = 0
		t.finished = true
		return 1
	}
	if t.Duration <= 0 {
		t.Remaining = 0
		return 1
	}

	fired := 0
	for t.Remaining <= 0 {
		t.Remaining += t.Duration
		fired++
	}
	return fired
}

// Finished reports whether a one-shot timer has run out.
func (t *Timer) Finished() bool { return t.finished }

// Reset restarts the countdown from the full duration.
func (t *Timer) Reset() {
	t.Remaining = t.Duration
	t.finished = false
}
