package game

import (
	"time"

	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// Transform is the world position of an entity. Rotation is only meaningful for the weapon.
type Transform struct {
	Position physics.Vec2
	Rotation float64
}

// Velocity is expressed in world units per second.
type Velocity physics.Vec2

func (v Velocity) Vec() physics.Vec2 { return physics.Vec2(v) }

// Health invariant: Current <= Max. The entity is dead once Current <= 0.
type Health struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
}

func (h Health) Dead() bool { return h.Current <= 0 }

// Damage lowers Current by amount.
func (h *Health) Damage(amount float64) {
	h.Current -= amount
}

// Collider holds AABB half-extents.
type Collider struct {
	Half physics.Vec2
}

// BoxCollider builds a collider from full width and height.
func BoxCollider(w, h float64) Collider {
	return Collider{Half: physics.V(w/2, h/2)}
}

type Movable struct {
	Speed float64
}

// Knockback marks an entity as being pushed. Its presence overrides steering.
type Knockback struct {
	Velocity physics.Vec2
	Origin   physics.Vec2
	Distance float64
}

type Player struct{}

type Enemy struct {
	XpValue float64
}

type Projectile struct {
	SpawnLocation physics.Vec2
}

type XpGem struct {
	Value float64
}

// Rift releases Remaining enemies, one per fire of its own timer.
type Rift struct {
	Remaining int
	Timer     Timer
}

// Invulnerable is present on the player while the post-hit window is running.
type Invulnerable struct {
	Timer Timer
}

// Weapon orbits the player at Offset and fires along its rotation.
type Weapon struct {
	Cooldown Timer
	Offset   float64
}

// RGBA is a render color.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Sprite is a render request: what to draw, not how.
type Sprite struct {
	Color RGBA
	Size  physics.Vec2
}

var (
	ColorPlayer     = RGBA{R: 154, G: 205, B: 50, A: 255}
	ColorWeapon     = RGBA{R: 179, G: 77, B: 179, A: 255}
	ColorEnemy      = RGBA{R: 255, G: 69, B: 0, A: 255}
	ColorProjectile = RGBA{R: 51, G: 51, B: 51, A: 255}
	ColorGem        = RGBA{R: 255, G: 192, B: 203, A: 255}
	ColorRift       = RGBA{R: 128, G: 0, B: 128, A: 255}
)

func seconds(d time.Duration) float64 { return d.Seconds() }
