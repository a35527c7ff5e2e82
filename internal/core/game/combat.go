package game

import (
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// resolveProjectiles tests every projectile against the enemies in store order.
// A projectile is consumed by the first enemy it overlaps.
func resolveProjectiles(ctx *Context) error {
	w := ctx.World
	kb := ctx.Config.Knockback
	damage := ctx.Config.Weapon.Damage

	w.Projectiles.Each(func(pid models.EntityID, _ *Projectile) {
		if w.Commands.Queued(pid) {
			return
		}
		pt, ok := w.Transforms.Get(pid)
		if !ok {
			return
		}
		pc, ok := w.Colliders.Get(pid)
		if !ok {
			return
		}
		var travel physics.Vec2
		if v, ok := w.Velocities.Get(pid); ok {
			travel = v.Vec()
		}

		w.Enemies.EachWhile(func(eid models.EntityID, _ *Enemy) bool {
			if w.Commands.Queued(eid) {
				return true
			}
			et, ok := w.Transforms.Get(eid)
			if !ok {
				return true
			}
			ec, ok := w.Colliders.Get(eid)
			if !ok || !physics.Overlaps(pt.Position, pc.Half, et.Position, ec.Half) {
				return true
			}

			w.Commands.Despawn(pid)
			if h, ok := w.Healths.Get(eid); ok {
				h.Damage(damage)
			}
			w.Knockbacks.Set(eid, Knockback{
				Velocity: travel.Normalize().Scale(kb.Speed),
				Origin:   et.Position,
				Distance: kb.Distance,
			})
			return false
		})
	})
	return nil
}

// resolveDeaths despawns everything whose health ran out and books the consequences.
func resolveDeaths(ctx *Context) error {
	w := ctx.World
	cfg := ctx.Config.Enemy

	for _, id := range w.Healths.IDs() {
		h, _ := w.Healths.Get(id)
		if !h.Dead() || w.Commands.Queued(id) {
			continue
		}
		at, _ := w.Position(id)
		w.Commands.Despawn(id)

		switch w.Kind(id) {
		case KindPlayer:
			ctx.Res.PlayerHealth = *h
			ctx.Logger.Info("Player died",
				log.Uint64("tick", ctx.Tick),
				log.Int("score", ctx.Res.Score),
				log.Float64("experience", ctx.Res.Experience))
			ctx.Emit("death", EventPlayerDied, PlayerDied{Position: at})

		case KindEnemy:
			ctx.Res.Score++
			dropped := ctx.Rand.Float64() < cfg.GemDropChance
			if dropped {
				e, _ := w.Enemies.Get(id)
				w.QueueGem(cfg.GemSize, at, e.XpValue)
			}
			ctx.Logger.Debug("Enemy killed",
				log.String("entity", id.String()),
				log.Bool("gem", dropped),
				log.Int("score", ctx.Res.Score))
			ctx.Emit("death", EventEnemyKilled, EnemyKilled{
				Entity:     id,
				Position:   at,
				GemDropped: dropped,
				Score:      ctx.Res.Score,
			})
		}
	}
	return nil
}
