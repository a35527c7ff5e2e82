package game

import (
	"math"

	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// openRifts places a rift on the circle around the player every time the rift timer fires.
func openRifts(ctx *Context) error {
	_, pt, err := ctx.player()
	if err != nil {
		return err
	}
	cfg := ctx.Config.Rift

	for range ctx.Res.RiftTimer.Tick(ctx.DT) {
		angle := ctx.Rand.Float64() * 2 * math.Pi
		at := pt.Position.Add(physics.FromAngle(angle).Scale(cfg.Radius))
		ctx.World.QueueRift(cfg, at)

		ctx.Logger.Debug("Rift opened",
			log.Float64("x", at.X),
			log.Float64("y", at.Y),
			log.Int("quota", cfg.Quota))
		ctx.Emit("rift", EventRiftOpened, RiftOpened{Position: at})
	}
	return nil
}

// releaseEnemies lets each rift spawn one enemy per fire of its own timer until
// its quota is spent, then closes it.
func releaseEnemies(ctx *Context) error {
	w := ctx.World

	w.Rifts.Each(func(id models.EntityID, r *Rift) {
		if w.Commands.Queued(id) {
			return
		}
		at, _ := w.Position(id)

		for fired := r.Timer.Tick(ctx.DT); fired > 0 && r.Remaining > 0; fired-- {
			w.QueueEnemy(ctx.Config.Enemy, at)
			r.Remaining--
			ctx.Emit("rift", EventEnemySpawned, EnemySpawned{Rift: id, Position: at, Remaining: r.Remaining})
		}

		if r.Remaining <= 0 {
			r.Remaining = 0
			w.Commands.Despawn(id)
		}
	})
	return nil
}
