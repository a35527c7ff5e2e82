package systems

import (
	"errors"
	"fmt"
	"time"
)

// System represents a game logic processor run once per tick.
type System[C any] interface {
	Name() string
	Update(ctx C) error
}

// Func adapts a plain function into a System.
type Func[C any] struct {
	name string
	fn   func(C) error
}

func NewFunc[C any](name string, fn func(C) error) Func[C] {
	return Func[C]{name: name, fn: fn}
}

func (f Func[C]) Name() string       { return f.name }
func (f Func[C]) Update(ctx C) error { return f.fn(ctx) }

// Metrics provides runtime metrics for a system.
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
}

// Pipeline runs systems in registration order. The order is part of the
// contract: later systems observe what earlier ones wrote in the same tick.
type Pipeline[C any] struct {
	systems []System[C]
	metrics []Metrics
	index   map[string]int
	onError func(name string, err error)
}

var (
	ErrDuplicateSystem = errors.New("system already registered")
	ErrSystemNotFound  = errors.New("system not found")
)

func NewPipeline[C any]() *Pipeline[C] {
	return &Pipeline[C]{index: make(map[string]int)}
}

// Register appends s to the end of the pipeline.
func (p *Pipeline[C]) Register(s System[C]) error {
	if _, exists := p.index[s.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
	}
	p.index[s.Name()] = len(p.systems)
	p.systems = append(p.systems, s)
	p.metrics = append(p.metrics, Metrics{})
	return nil
}

// OnSystemError installs a callback invoked for every failing system.
func (p *Pipeline[C]) OnSystemError(fn func(name string, err error)) {
	p.onError = fn
}

// Run executes every system once. A failing system does not stop the ones after
// it; all failures are joined into the returned error.
func (p *Pipeline[C]) Run(ctx C) error {
	var all error
	for i, s := range p.systems {
		start := time.Now()
		err := s.Update(ctx)
		elapsed := time.Since(start)

		m := &p.metrics[i]
		m.ExecutionCount++
		m.TotalExecutionTime += elapsed
		m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
		if elapsed > m.MaxExecutionTime {
			m.MaxExecutionTime = elapsed
		}

		if err != nil {
			m.ErrorCount++
			m.LastError = err
			if p.onError != nil {
				p.onError(s.Name(), err)
			}
			all = errors.Join(all, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return all
}

// GetExecutionOrder returns system names in run order.
func (p *Pipeline[C]) GetExecutionOrder() []string {
	out := make([]string, len(p.systems))
	for i, s := range p.systems {
		out[i] = s.Name()
	}
	return out
}

func (p *Pipeline[C]) GetSystemMetrics(name string) (Metrics, error) {
	i, ok := p.index[name]
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	return p.metrics[i], nil
}
