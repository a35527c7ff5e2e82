package game

import (
	"math/rand/v2"
	"testing"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/events/bus"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// newTestContext returns a tick context with a player and weapon at the origin.
func newTestContext(t *testing.T, mutate ...func(*config.Config)) *Context {
	t.Helper()

	cfg := config.Default()
	for _, fn := range mutate {
		fn(&cfg)
	}

	w := NewWorld()
	res := &Resources{
		RiftTimer:    NewTimer(cfg.Rift.Interval, TimerRepeating),
		PlayerHealth: Health{Current: cfg.Player.Health, Max: cfg.Player.Health},
	}
	res.Player = w.SpawnPlayer(cfg.Player, physics.Zero)
	res.Weapon = w.SpawnWeapon(cfg.Weapon, physics.Zero)

	return &Context{
		Tick:   1,
		DT:     cfg.TickDuration(),
		World:  w,
		Res:    res,
		Config: &cfg,
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Bus:    bus.New(),
		Logger: log.NewNop(),
	}
}

func (c *Context) playerHealth(t *testing.T) Health {
	t.Helper()
	h, ok := c.World.Healths.Get(c.Res.Player)
	if !ok {
		t.Fatal("player has no health")
	}
	return *h
}

// collect subscribes to eventType and returns a pointer to the received payloads.
func collect[T any](t *testing.T, b bus.EventBus, eventType string) *[]T {
	t.Helper()
	var got []T
	_, err := b.Subscribe(eventType, func(e bus.Event) error {
		got = append(got, e.Data().(T))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return &got
}
