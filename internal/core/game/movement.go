package game

import "github.com/zeusync/rifts/internal/core/models"

// integrateMovement advances every moving entity by velocity * dt.
func integrateMovement(ctx *Context) error {
	w := ctx.World
	w.Velocities.Each(func(id models.EntityID, v *Velocity) {
		t, ok := w.Transforms.Get(id)
		if !ok {
			return
		}
		t.Position = t.Position.Add(v.Vec().Scale(ctx.DT))
	})
	return nil
}
