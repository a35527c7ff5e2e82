package game

import (
	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// Kind discriminates entity variants for queries and snapshots.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPlayer
	KindWeapon
	KindEnemy
	KindProjectile
	KindGem
	KindRift
)

var kindNames = [...]string{"unknown", "player", "weapon", "enemy", "projectile", "gem", "rift"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// World is the entity store: a generational registry plus one table per component.
type World struct {
	Registry *models.Registry
	Commands *models.Commands

	Transforms    *models.Table[Transform]
	Velocities    *models.Table[Velocity]
	Healths       *models.Table[Health]
	Colliders     *models.Table[Collider]
	Movables      *models.Table[Movable]
	Knockbacks    *models.Table[Knockback]
	Players       *models.Table[Player]
	Enemies       *models.Table[Enemy]
	Projectiles   *models.Table[Projectile]
	Gems          *models.Table[XpGem]
	Rifts         *models.Table[Rift]
	Invulnerables *models.Table[Invulnerable]
	Weapons       *models.Table[Weapon]
	Sprites       *models.Table[Sprite]
}

func NewWorld() *World {
	r := models.NewRegistry()
	return &World{
		Registry:      r,
		Commands:      models.NewCommands(r),
		Transforms:    models.NewTable[Transform](r),
		Velocities:    models.NewTable[Velocity](r),
		Healths:       models.NewTable[Health](r),
		Colliders:     models.NewTable[Collider](r),
		Movables:      models.NewTable[Movable](r),
		Knockbacks:    models.NewTable[Knockback](r),
		Players:       models.NewTable[Player](r),
		Enemies:       models.NewTable[Enemy](r),
		Projectiles:   models.NewTable[Projectile](r),
		Gems:          models.NewTable[XpGem](r),
		Rifts:         models.NewTable[Rift](r),
		Invulnerables: models.NewTable[Invulnerable](r),
		Weapons:       models.NewTable[Weapon](r),
		Sprites:       models.NewTable[Sprite](r),
	}
}

// Reset removes every entity and drops pending commands.
func (w *World) Reset() {
	w.Commands.Reset()
	w.Registry.Clear()
}

// Kind derives the variant of id from its marker components.
func (w *World) Kind(id models.EntityID) Kind {
	switch {
	case w.Players.Has(id):
		return KindPlayer
	case w.Weapons.Has(id):
		return KindWeapon
	case w.Enemies.Has(id):
		return KindEnemy
	case w.Projectiles.Has(id):
		return KindProjectile
	case w.Gems.Has(id):
		return KindGem
	case w.Rifts.Has(id):
		return KindRift
	default:
		return KindUnknown
	}
}

// Position returns the position of id, if it has a Transform.
func (w *World) Position(id models.EntityID) (physics.Vec2, bool) {
	t, ok := w.Transforms.Get(id)
	if !ok {
		return physics.Zero, false
	}
	return t.Position, true
}

func (w *World) buildPlayer(id models.EntityID, cfg config.PlayerConfig, at physics.Vec2) {
	w.Players.Set(id, Player{})
	w.Transforms.Set(id, Transform{Position: at})
	w.Velocities.Set(id, Velocity{})
	w.Healths.Set(id, Health{Current: cfg.Health, Max: cfg.Health})
	w.Colliders.Set(id, BoxCollider(cfg.Size, cfg.Size))
	w.Movables.Set(id, Movable{Speed: cfg.Speed})
	w.Sprites.Set(id, Sprite{Color: ColorPlayer, Size: physics.V(cfg.Size, cfg.Size)})
}

func (w *World) buildWeapon(id models.EntityID, cfg config.WeaponConfig, owner physics.Vec2) {
	w.Weapons.Set(id, Weapon{Cooldown: FinishedTimer(cfg.Cooldown), Offset: cfg.OrbitOffset})
	w.Transforms.Set(id, Transform{Position: owner.Add(physics.V(cfg.OrbitOffset, 0))})
	w.Sprites.Set(id, Sprite{Color: ColorWeapon, Size: physics.V(cfg.Width, cfg.Height)})
}

func (w *World) buildEnemy(id models.EntityID, cfg config.EnemyConfig, at physics.Vec2) {
	w.Enemies.Set(id, Enemy{XpValue: cfg.XpValue})
	w.Transforms.Set(id, Transform{Position: at})
	w.Velocities.Set(id, Velocity{})
	w.Healths.Set(id, Health{Current: cfg.Health, Max: cfg.Health})
	w.Colliders.Set(id, BoxCollider(cfg.Size, cfg.Size))
	w.Movables.Set(id, Movable{Speed: cfg.Speed})
	w.Sprites.Set(id, Sprite{Color: ColorEnemy, Size: physics.V(cfg.Size, cfg.Size)})
}

func (w *World) buildProjectile(id models.EntityID, cfg config.WeaponConfig, at, velocity physics.Vec2) {
	w.Projectiles.Set(id, Projectile{SpawnLocation: at})
	w.Transforms.Set(id, Transform{Position: at})
	w.Velocities.Set(id, Velocity(velocity))
	w.Colliders.Set(id, BoxCollider(cfg.ProjectileSize, cfg.ProjectileSize))
	w.Sprites.Set(id, Sprite{Color: ColorProjectile, Size: physics.V(cfg.ProjectileSize, cfg.ProjectileSize)})
}

func (w *World) buildGem(id models.EntityID, size float64, at physics.Vec2, value float64) {
	w.Gems.Set(id, XpGem{Value: value})
	w.Transforms.Set(id, Transform{Position: at})
	w.Colliders.Set(id, BoxCollider(size, size))
	w.Sprites.Set(id, Sprite{Color: ColorGem, Size: physics.V(size, size)})
}

func (w *World) buildRift(id models.EntityID, cfg config.RiftConfig, at physics.Vec2) {
	w.Rifts.Set(id, Rift{Remaining: cfg.Quota, Timer: NewTimer(cfg.SpawnInterval, TimerRepeating)})
	w.Transforms.Set(id, Transform{Position: at})
	w.Sprites.Set(id, Sprite{Color: ColorRift, Size: physics.V(cfg.Size, cfg.Size)})
}

// SpawnPlayer creates the player singleton immediately.
func (w *World) SpawnPlayer(cfg config.PlayerConfig, at physics.Vec2) models.EntityID {
	id := w.Registry.Create()
	w.buildPlayer(id, cfg, at)
	return id
}

// SpawnWeapon creates the weapon orbiting an owner at the given position.
func (w *World) SpawnWeapon(cfg config.WeaponConfig, owner physics.Vec2) models.EntityID {
	id := w.Registry.Create()
	w.buildWeapon(id, cfg, owner)
	return id
}

// SpawnEnemy creates an enemy immediately. Systems use QueueEnemy instead.
func (w *World) SpawnEnemy(cfg config.EnemyConfig, at physics.Vec2) models.EntityID {
	id := w.Registry.Create()
	w.buildEnemy(id, cfg, at)
	return id
}

// SpawnProjectile creates a projectile immediately.
func (w *World) SpawnProjectile(cfg config.WeaponConfig, at, velocity physics.Vec2) models.EntityID {
	id := w.Registry.Create()
	w.buildProjectile(id, cfg, at, velocity)
	return id
}

// SpawnGem creates an experience gem immediately.
func (w *World) SpawnGem(size float64, at physics.Vec2, value float64) models.EntityID {
	id := w.Registry.Create()
	w.buildGem(id, size, at, value)
	return id
}

// SpawnRift creates a rift immediately.
func (w *World) SpawnRift(cfg config.RiftConfig, at physics.Vec2) models.EntityID {
	id := w.Registry.Create()
	w.buildRift(id, cfg, at)
	return id
}

func (w *World) QueueEnemy(cfg config.EnemyConfig, at physics.Vec2) {
	w.Commands.Spawn(func(id models.EntityID) { w.buildEnemy(id, cfg, at) })
}

func (w *World) QueueProjectile(cfg config.WeaponConfig, at, velocity physics.Vec2) {
	w.Commands.Spawn(func(id models.EntityID) { w.buildProjectile(id, cfg, at, velocity) })
}

func (w *World) QueueGem(size float64, at physics.Vec2, value float64) {
	w.Commands.Spawn(func(id models.EntityID) { w.buildGem(id, size, at, value) })
}

func (w *World) QueueRift(cfg config.RiftConfig, at physics.Vec2) {
	w.Commands.Spawn(func(id models.EntityID) { w.buildRift(id, cfg, at) })
}
