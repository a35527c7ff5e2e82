package generic

import "sync"

// Pool is a typed sync.Pool. An optional reset hook runs on Put so callers
// always Get a clean value.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewResetPool creates a pool whose values pass through reset before they are reused.
func NewResetPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	p := NewPool(generate)
	p.reset = reset
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}
