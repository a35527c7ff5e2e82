package game

import (
	"cmp"
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
	"github.com/zeusync/rifts/pkg/generic"
)

var checksumBuffers = generic.NewResetPool(
	func() *[]byte {
		b := make([]byte, 0, 4096)
		return &b
	},
	func(b *[]byte) *[]byte {
		*b = (*b)[:0]
		return b
	},
)

// EntityView is the render-facing projection of one entity.
type EntityView struct {
	ID       models.EntityID `json:"id"`
	Kind     Kind            `json:"kind"`
	Position physics.Vec2    `json:"position"`
	Rotation float64         `json:"rotation,omitempty"`
	Color    RGBA            `json:"color"`
	Size     physics.Vec2    `json:"size"`
}

// Snapshot is the read-only post-tick state handed to display layers.
// Checksum covers everything except RunID, so equal seeds and inputs produce
// equal checksum sequences.
type Snapshot struct {
	Tick       uint64       `json:"tick"`
	State      GameState    `json:"state"`
	RunID      string       `json:"run_id,omitempty"`
	Score      int          `json:"score"`
	Experience float64      `json:"experience"`
	Health     Health       `json:"health"`
	Entities   []EntityView `json:"entities"`
	Checksum   uint64       `json:"checksum"`
}

func takeSnapshot(tick uint64, state GameState, w *World, res *Resources) Snapshot {
	snap := Snapshot{
		Tick:       tick,
		State:      state,
		RunID:      res.RunID,
		Score:      res.Score,
		Experience: res.Experience,
		Health:     res.PlayerHealth,
		Entities:   make([]EntityView, 0, w.Sprites.Len()),
	}

	w.Sprites.Each(func(id models.EntityID, sp *Sprite) {
		t, ok := w.Transforms.Get(id)
		if !ok {
			return
		}
		snap.Entities = append(snap.Entities, EntityView{
			ID:       id,
			Kind:     w.Kind(id),
			Position: t.Position,
			Rotation: t.Rotation,
			Color:    sp.Color,
			Size:     sp.Size,
		})
	})
	slices.SortFunc(snap.Entities, func(a, b EntityView) int {
		return cmp.Compare(a.ID.Index, b.ID.Index)
	})

	snap.Checksum = snap.checksum()
	return snap
}

func (s *Snapshot) checksum() uint64 {
	pooled := checksumBuffers.Get()
	defer checksumBuffers.Put(pooled)

	buf := binary.LittleEndian.AppendUint64(*pooled, s.Tick)
	buf = append(buf, byte(s.State))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(s.Score))
	buf = appendFloat(buf, s.Experience)
	buf = appendFloat(buf, s.Health.Current)
	buf = appendFloat(buf, s.Health.Max)

	for _, e := range s.Entities {
		buf = binary.LittleEndian.AppendUint32(buf, e.ID.Index)
		buf = binary.LittleEndian.AppendUint32(buf, e.ID.Generation)
		buf = append(buf, byte(e.Kind))
		buf = appendFloat(buf, e.Position.X)
		buf = appendFloat(buf, e.Position.Y)
		buf = appendFloat(buf, e.Rotation)
	}
	*pooled = buf
	return xxhash.Sum64(buf)
}

func appendFloat(buf []byte, f float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
}
