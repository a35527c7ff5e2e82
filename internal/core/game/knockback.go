package game

import (
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// applyKnockback drives knocked back entities and hands control back once they
// travelled the threshold distance from their origin.
func applyKnockback(ctx *Context) error {
	w := ctx.World
	var ended []models.EntityID

	w.Knockbacks.Each(func(id models.EntityID, kb *Knockback) {
		t, ok := w.Transforms.Get(id)
		if !ok {
			return
		}
		if physics.Distance(t.Position, kb.Origin) >= kb.Distance {
			ended = append(ended, id)
			return
		}
		if v, ok := w.Velocities.Get(id); ok {
			*v = Velocity(kb.Velocity)
		}
	})

	for _, id := range ended {
		w.Knockbacks.Remove(id)
		if v, ok := w.Velocities.Get(id); ok {
			*v = Velocity{}
		}
	}
	return nil
}
