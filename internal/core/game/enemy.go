package game

import (
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// steerEnemies points every enemy that is not being knocked back at the player.
func steerEnemies(ctx *Context) error {
	_, pt, err := ctx.player()
	if err != nil {
		return err
	}
	w := ctx.World
	target := pt.Position

	w.Enemies.Each(func(id models.EntityID, _ *Enemy) {
		if w.Knockbacks.Has(id) {
			return
		}
		t, ok := w.Transforms.Get(id)
		if !ok {
			return
		}
		v, ok := w.Velocities.Get(id)
		if !ok {
			return
		}
		speed := ctx.Config.Enemy.Speed
		if m, ok := w.Movables.Get(id); ok {
			speed = m.Speed
		}
		*v = Velocity(target.Sub(t.Position).Normalize().Scale(speed))
	})
	return nil
}

// cullEnemies despawns enemies that drifted beyond the maximum distance from the player.
func cullEnemies(ctx *Context) error {
	_, pt, err := ctx.player()
	if err != nil {
		return err
	}
	w := ctx.World
	limit := ctx.Config.Enemy.MaxDistance

	w.Enemies.Each(func(id models.EntityID, _ *Enemy) {
		t, ok := w.Transforms.Get(id)
		if !ok {
			return
		}
		if physics.Distance(pt.Position, t.Position) > limit {
			w.Commands.Despawn(id)
		}
	})
	return nil
}
