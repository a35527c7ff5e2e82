package game

import (
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// collectGems picks up every gem strictly inside the pickup radius.
func collectGems(ctx *Context) error {
	_, pt, err := ctx.player()
	if err != nil {
		return err
	}
	w := ctx.World
	radius := ctx.Config.Pickup.Radius

	w.Gems.Each(func(id models.EntityID, gem *XpGem) {
		if w.Commands.Queued(id) {
			return
		}
		t, ok := w.Transforms.Get(id)
		if !ok || physics.Distance(pt.Position, t.Position) >= radius {
			return
		}
		w.Commands.Despawn(id)
		ctx.Res.Experience += gem.Value
		ctx.Emit("pickup", EventGemCollected, GemCollected{Value: gem.Value, Total: ctx.Res.Experience})
	})
	return nil
}
