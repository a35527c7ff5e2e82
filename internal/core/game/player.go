package game

import (
	"fmt"

	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// controlPlayer turns the movement intent into player velocity. No intent means no drift.
func controlPlayer(ctx *Context) error {
	id, _, err := ctx.player()
	if err != nil {
		return err
	}

	v, ok := ctx.World.Velocities.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s has no velocity", ErrNoPlayer, id)
	}

	speed := ctx.Config.Player.Speed
	if m, ok := ctx.World.Movables.Get(id); ok {
		speed = m.Speed
	}
	*v = Velocity(ctx.Input.Move.Normalize().Scale(speed))
	return nil
}

func (c *Context) weapon() (*Weapon, *Transform, error) {
	id := c.Res.Weapon
	wpn, ok := c.World.Weapons.Get(id)
	if !ok {
		return nil, nil, ErrNoWeapon
	}
	t, ok := c.World.Transforms.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no transform", ErrNoWeapon, id)
	}
	return wpn, t, nil
}

// aimWeapon keeps the weapon orbiting the player, facing the aim point.
// Aim points inside the dead zone keep the previous facing.
func aimWeapon(ctx *Context) error {
	_, pt, err := ctx.player()
	if err != nil {
		return err
	}
	wpn, wt, err := ctx.weapon()
	if err != nil {
		return err
	}

	toAim := ctx.Input.Aim.Sub(pt.Position)
	if toAim.Length() >= ctx.Config.Player.AimDeadZone {
		wt.Rotation = toAim.Angle()
	}
	wt.Position = pt.Position.Add(physics.FromAngle(wt.Rotation).Scale(wpn.Offset))
	return nil
}

// fireWeapon ticks the cooldown and queues a projectile from the nozzle when triggered.
func fireWeapon(ctx *Context) error {
	wpn, wt, err := ctx.weapon()
	if err != nil {
		return err
	}

	wpn.Cooldown.Tick(ctx.DT)
	if !ctx.Input.Fire || !wpn.Cooldown.Finished() {
		return nil
	}

	cfg := ctx.Config.Weapon
	facing := physics.FromAngle(wt.Rotation)
	nozzle := wt.Position.Add(facing.Scale(cfg.NozzleOffset))
	ctx.World.QueueProjectile(cfg, nozzle, facing.Scale(cfg.ProjectileSpeed))
	wpn.Cooldown.Reset()
	return nil
}

// cullProjectiles despawns projectiles that travelled past the weapon range.
func cullProjectiles(ctx *Context) error {
	w := ctx.World
	limit := ctx.Config.Weapon.Range
	w.Projectiles.Each(func(id models.EntityID, p *Projectile) {
		t, ok := w.Transforms.Get(id)
		if !ok {
			return
		}
		if physics.Distance(t.Position, p.SpawnLocation) > limit {
			w.Commands.Despawn(id)
		}
	})
	return nil
}

// defendPlayer runs the invulnerability window and applies contact damage:
// at most one hit per tick, none while invulnerable.
func defendPlayer(ctx *Context) error {
	id, pt, err := ctx.player()
	if err != nil {
		return err
	}
	w := ctx.World

	if inv, ok := w.Invulnerables.Get(id); ok {
		if inv.Timer.Tick(ctx.DT) == 0 {
			return nil
		}
		w.Invulnerables.Remove(id)
	}

	pc, ok := w.Colliders.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s has no collider", ErrNoPlayer, id)
	}
	health, ok := w.Healths.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s has no health", ErrNoPlayer, id)
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
		if !ok {
			return true
		}
		if !physics.Overlaps(pt.Position, pc.Half, et.Position, ec.Half) {
			return true
		}

		health.Damage(ctx.Config.Player.ContactDamage)
		w.Invulnerables.Set(id, Invulnerable{Timer: NewTimer(ctx.Config.Player.Invulnerable, TimerOnce)})
		ctx.Res.PlayerHealth = *health
		ctx.Emit("player", EventPlayerHealthChanged, PlayerHealthChanged{Current: health.Current, Max: health.Max})
		return false
	})
	return nil
}
