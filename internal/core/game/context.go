package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/events/bus"
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// Input is what the external input collaborator hands the core for one tick.
type Input struct {
	// Move is the raw movement intent; only its direction matters.
	Move physics.Vec2 `json:"move"`
	// Aim is the world-space point the player is aiming at.
	Aim physics.Vec2 `json:"aim"`
	// Fire requests a shot this tick.
	Fire bool `json:"fire"`
	// Start is the one-shot start/restart signal.
	Start bool `json:"start"`
}

// Resources are the process-wide values of one run, each with a single writer system.
type Resources struct {
	RunID        string
	Score        int
	Experience   float64
	RiftTimer    Timer
	Player       models.EntityID
	Weapon       models.EntityID
	PlayerHealth Health
}

// Context is passed to every system for one tick.
type Context struct {
	Tick   uint64
	DT     float64
	Input  Input
	World  *World
	Res    *Resources
	Config *config.Config
	Rand   *rand.Rand
	Bus    bus.EventBus
	Logger log.Log

	errs error
}

// Emit publishes an event raised by source during this tick. Handler failures
// are collected and returned by Step.
func (c *Context) Emit(source, eventType string, data any) {
	if c.Bus == nil {
		return
	}
	if err := c.Bus.Publish(bus.NewEvent(eventType, source, c.Tick, data)); err != nil {
		c.errs = errors.Join(c.errs, fmt.Errorf("%s handler: %w", eventType, err))
	}
}

// Err returns the accumulated event handler errors.
func (c *Context) Err() error { return c.errs }

// player resolves the player singleton.
func (c *Context) player() (models.EntityID, *Transform, error) {
	id := c.Res.Player
	if !c.World.Registry.Alive(id) {
		return models.NoEntity, nil, ErrNoPlayer
	}
	t, ok := c.World.Transforms.Get(id)
	if !ok {
		return models.NoEntity, nil, fmt.Errorf("%w: %s has no transform", ErrNoPlayer, id)
	}
	return id, t, nil
}
